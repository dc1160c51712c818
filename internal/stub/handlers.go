package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/go-chi/chi/v5"
)

func withUserID(r *http.Request, id int64) context.Context {
	return context.WithValue(r.Context(), userIDKey, id)
}

// caller returns the authenticated account. Callers hold the lock.
func (s *Server) caller(r *http.Request) *account {
	id, _ := r.Context().Value(userIDKey).(int64)
	return s.users[id]
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.users {
		if a.profile.Username == req.Username {
			if a.password != req.Password || !a.profile.IsActive {
				break
			}
			token := s.issueToken(a.profile.ID)
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": token,
				"user":         a.profile,
			})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": a.profile})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if req.DisplayName != "" {
		a.profile.DisplayName = req.DisplayName
	}
	if req.Email != "" {
		a.profile.Email = req.Email
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": a.profile})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if a.password != req.CurrentPassword {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "New password is required")
		return
	}
	a.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	stats := map[string]int{}
	countByStatus := func(visible func(*models.Task) bool) (total, pending, inProgress, completed, overdue int) {
		for _, t := range s.tasks {
			if !visible(t) {
				continue
			}
			total++
			switch t.Status {
			case models.StatusPending:
				pending++
			case models.StatusInProgress:
				inProgress++
			case models.StatusCompleted:
				completed++
			}
			if isOverdue(t) {
				overdue++
			}
		}
		return
	}

	switch a.profile.Role {
	case models.RoleSuperadmin:
		total, pending, inProgress, completed, overdue := countByStatus(func(*models.Task) bool { return true })
		active := 0
		for _, u := range s.users {
			if u.profile.IsActive {
				active++
			}
		}
		stats = map[string]int{
			"total_tasks":       total,
			"pending_tasks":     pending,
			"in_progress_tasks": inProgress,
			"completed_tasks":   completed,
			"overdue_tasks":     overdue,
			"total_users":       len(s.users),
			"active_users":      active,
		}
	case models.RoleAdmin:
		total, pending, inProgress, completed, overdue := countByStatus(func(*models.Task) bool { return true })
		stats = map[string]int{
			"total_tasks":       total,
			"pending_tasks":     pending,
			"in_progress_tasks": inProgress,
			"completed_tasks":   completed,
			"overdue_tasks":     overdue,
		}
	default:
		mine := func(t *models.Task) bool { return t.AssigneeUID != nil && *t.AssigneeUID == a.profile.ID }
		total, pending, inProgress, completed, overdue := countByStatus(mine)
		stats = map[string]int{
			"my_tasks":          total,
			"pending_tasks":     pending,
			"in_progress_tasks": inProgress,
			"completed_tasks":   completed,
			"overdue_tasks":     overdue,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func isOverdue(t *models.Task) bool {
	if t.DueDate == "" || t.Status == models.StatusCompleted || t.Status == models.StatusCancelled {
		return false
	}
	due, err := time.Parse(time.RFC3339, t.DueDate)
	if err != nil {
		return false
	}
	return time.Now().UTC().After(due)
}

// withProfiles returns a copy of the task with assignee and creator
// profiles embedded, matching the backend's response shape.
func (s *Server) withProfiles(t *models.Task) models.Task {
	out := *t
	if t.AssigneeUID != nil {
		if a, ok := s.users[*t.AssigneeUID]; ok {
			profile := a.profile
			out.Assignee = &profile
		}
	}
	if creator, ok := s.users[t.CreatedByUID]; ok {
		profile := creator.profile
		out.Creator = &profile
	}
	return out
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var tasks []models.Task
	for _, t := range s.tasks {
		if !a.profile.Role.IsAdmin() && (t.AssigneeUID == nil || *t.AssigneeUID != a.profile.ID) {
			continue
		}
		if status != "" && string(t.Status) != status {
			continue
		}
		tasks = append(tasks, s.withProfiles(t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     *string             `json:"due_date"`
		AssigneeUID *int64              `json:"assignee_uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.profile.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.AssigneeUID != nil {
		if _, ok := s.users[*req.AssigneeUID]; !ok {
			writeError(w, http.StatusBadRequest, "Assignee not found")
			return
		}
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	s.nextTask++
	task := &models.Task{
		ID:           s.nextTask,
		Title:        req.Title,
		Description:  req.Description,
		Status:       status,
		Priority:     priority,
		CreatedAt:    now(),
		UpdatedAt:    now(),
		AssigneeUID:  req.AssigneeUID,
		CreatedByUID: a.profile.ID,
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	s.tasks[task.ID] = task

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    s.withProfiles(task),
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	var req struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *models.TaskStatus   `json:"status"`
		Priority    *models.TaskPriority `json:"priority"`
		DueDate     *string              `json:"due_date"`
		AssigneeUID *int64               `json:"assignee_uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	task, ok := s.tasks[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	isAdmin := a.profile.Role.IsAdmin()
	isAssignee := task.AssigneeUID != nil && *task.AssigneeUID == a.profile.ID
	if !isAdmin && !isAssignee {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	// Non-admin assignees may only move the status.
	if req.Status != nil {
		task.Status = *req.Status
	}
	if isAdmin {
		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		if req.AssigneeUID != nil {
			if _, ok := s.users[*req.AssigneeUID]; ok {
				task.AssigneeUID = req.AssigneeUID
			}
		}
		if req.DueDate != nil {
			task.DueDate = *req.DueDate
		}
	}
	task.UpdatedAt = now()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    s.withProfiles(task),
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.profile.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if _, ok := s.tasks[id]; !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	delete(s.tasks, id)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.profile.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	users := make([]models.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.profile)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string      `json:"username"`
		Email       string      `json:"email"`
		DisplayName string      `json:"display_name"`
		Role        models.Role `json:"role"`
		Password    string      `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.profile.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "username, email, password and display_name are required")
		return
	}
	for _, u := range s.users {
		if u.profile.Username == req.Username {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		if u.profile.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role.IsAdmin() && a.profile.Role != models.RoleSuperadmin {
		writeError(w, http.StatusForbidden, "Only superadmins can create admin users")
		return
	}

	id := s.addUser(account{
		profile: models.UserProfile{
			Username:    req.Username,
			Email:       req.Email,
			DisplayName: req.DisplayName,
			Role:        role,
			IsActive:    true,
		},
		password: req.Password,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    s.users[id].profile,
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	var req struct {
		Username    *string      `json:"username"`
		Email       *string      `json:"email"`
		DisplayName *string      `json:"display_name"`
		Role        *models.Role `json:"role"`
		IsActive    *bool        `json:"is_active"`
		Password    *string      `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !a.profile.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	target, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	if req.Role != nil && req.Role.IsAdmin() && a.profile.Role != models.RoleSuperadmin {
		writeError(w, http.StatusForbidden, "Only superadmins can grant admin roles")
		return
	}

	if req.Username != nil {
		target.profile.Username = *req.Username
	}
	if req.Email != nil {
		target.profile.Email = *req.Email
	}
	if req.DisplayName != nil {
		target.profile.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		target.profile.Role = *req.Role
	}
	if req.IsActive != nil {
		target.profile.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		target.password = *req.Password
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    target.profile,
	})
}
