// Package stub is an in-memory implementation of the task-management
// API contract the client consumes. It backs the `taskdeck demo`
// command and the integration tests, so neither needs a real backend.
// State lives in maps guarded by one mutex and is lost on exit.
package stub

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// account pairs a profile with its plaintext password. Plaintext is
// acceptable here: the stub is a test fixture, not a real backend.
type account struct {
	profile  models.UserProfile
	password string
}

// Server holds the stub's state and serves the API routes.
type Server struct {
	mu       sync.Mutex
	users    map[int64]*account
	tasks    map[int64]*models.Task
	tokens   map[string]int64
	nextUser int64
	nextTask int64
}

// New returns a Server seeded with the default superadmin account
// (admin / admin123), matching the backend's bootstrap behavior.
func New() *Server {
	s := &Server{
		users:  make(map[int64]*account),
		tasks:  make(map[int64]*models.Task),
		tokens: make(map[string]int64),
	}
	s.addUser(account{
		profile: models.UserProfile{
			Username:    "admin",
			Email:       "admin@example.com",
			DisplayName: "Administrator",
			Role:        models.RoleSuperadmin,
			IsActive:    true,
		},
		password: "admin123",
	})
	return s
}

// AddUser seeds an extra account and returns its assigned ID.
func (s *Server) AddUser(profile models.UserProfile, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(account{profile: profile, password: password})
}

// AddTask seeds a task and returns its assigned ID.
func (s *Server) AddTask(task models.Task) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTask++
	task.ID = s.nextTask
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.CreatedAt == "" {
		task.CreatedAt = now()
	}
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = &task
	return task.ID
}

func (s *Server) addUser(a account) int64 {
	s.nextUser++
	a.profile.ID = s.nextUser
	if a.profile.CreatedAt == "" {
		a.profile.CreatedAt = now()
	}
	s.users[a.profile.ID] = &a
	return a.profile.ID
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Router returns the HTTP handler serving the API contract.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)
			r.Put("/auth/update-profile", s.handleUpdateProfile)
			r.Post("/auth/change-password", s.handleChangePassword)

			r.Get("/dashboard/stats", s.handleStats)

			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)

			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleCreateUser)
			r.Put("/users/{id}", s.handleUpdateUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Resource not found")
	})

	return r
}

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth resolves the bearer token to a user ID and stores it in
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Authorization token is required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r, userID)))
	})
}

// RevokeAll invalidates every issued token. Tests use this to simulate
// a session going stale server-side.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]int64)
}

// issueToken mints an opaque token for the user. Callers hold the lock.
func (s *Server) issueToken(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the contract's flat error shape.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
