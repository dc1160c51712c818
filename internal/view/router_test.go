package view

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/taskdeck/internal/api"
	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/atinyakov/taskdeck/internal/session"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// recorderPresenter records every region update it receives.
type recorderPresenter struct {
	mu       sync.Mutex
	active   []View
	stats    []models.DashboardStats
	recent   [][]models.Task
	tasks    [][]models.Task
	users    [][]models.UserProfile
	profiles []models.UserProfile
}

func (p *recorderPresenter) ActivateView(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = append(p.active, v)
}

func (p *recorderPresenter) ShowDashboardStats(s models.DashboardStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = append(p.stats, s)
}

func (p *recorderPresenter) ShowRecentTasks(t []models.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = append(p.recent, t)
}

func (p *recorderPresenter) ShowTasks(t []models.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, t)
}

func (p *recorderPresenter) ShowUsers(u []models.UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, u)
}

func (p *recorderPresenter) ShowProfile(u models.UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles = append(p.profiles, u)
}

// recorderNotifier records notifications by kind.
type recorderNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
	infos     []string
}

func (n *recorderNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recorderNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recorderNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

// seedSession builds an authenticated store without network traffic by
// restoring a hand-written state file.
func seedSession(t *testing.T, client *api.Client, role models.Role) *session.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	state := fmt.Sprintf(`{"authToken":"tok","currentUser":{"id":1,"username":"u","display_name":"U","email":"u@example.com","role":%q,"is_active":true}}`, role)
	if err := os.WriteFile(path, []byte(state), 0o600); err != nil {
		t.Fatal(err)
	}
	s := session.New(client, path, nil)
	if !s.Restore() {
		t.Fatal("restore failed")
	}
	return s
}

// routeTransport fakes the backend per path, counting requests.
type routeTransport struct {
	mu     sync.Mutex
	counts map[string]int
	routes map[string]roundTripperFunc
}

func newRouteTransport() *routeTransport {
	return &routeTransport{counts: make(map[string]int), routes: make(map[string]roundTripperFunc)}
}

func (rt *routeTransport) handle(path string, fn roundTripperFunc) {
	rt.routes[path] = fn
}

func (rt *routeTransport) count(path string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.counts[path]
}

func (rt *routeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.counts[req.URL.Path]++
	fn, ok := rt.routes[req.URL.Path]
	rt.mu.Unlock()
	if !ok {
		return jsonResponse(http.StatusNotFound, `{"error":"Resource not found"}`), nil
	}
	return fn(req)
}

func newRouter(t *testing.T, rt http.RoundTripper, role models.Role) (*Router, *recorderPresenter, *recorderNotifier) {
	t.Helper()
	client := api.New("http://example.com", &http.Client{Transport: rt}, nil)
	sess := seedSession(t, client, role)
	presenter := &recorderPresenter{}
	notifier := &recorderNotifier{}
	return NewRouter(client, sess, presenter, notifier, nil), presenter, notifier
}

func TestUsersViewGuard(t *testing.T) {
	tests := []struct {
		role      models.Role
		wantFetch bool
	}{
		{models.RoleUser, false},
		{models.RoleAdmin, true},
		{models.RoleSuperadmin, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			rt := newRouteTransport()
			rt.handle("/api/users", func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"users":[{"id":1,"username":"u"}]}`), nil
			})

			router, presenter, _ := newRouter(t, rt, tt.role)
			router.SwitchView(context.Background(), Users)

			gotFetch := rt.count("/api/users") > 0
			if gotFetch != tt.wantFetch {
				t.Errorf("users request issued = %t; want %t", gotFetch, tt.wantFetch)
			}
			if tt.wantFetch && len(presenter.users) != 1 {
				t.Errorf("expected one user-list update, got %d", len(presenter.users))
			}
			if !tt.wantFetch && len(presenter.users) != 0 {
				t.Errorf("non-admin session must never populate the users region")
			}
		})
	}
}

func TestSwitchToSameViewReloads(t *testing.T) {
	rt := newRouteTransport()
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
	})

	router, presenter, _ := newRouter(t, rt, models.RoleUser)
	router.SwitchView(context.Background(), Tasks)
	router.SwitchView(context.Background(), Tasks)

	if got := rt.count("/api/tasks"); got != 2 {
		t.Errorf("task fetches = %d; switching to the active view must still reload", got)
	}
	if len(presenter.tasks) != 2 {
		t.Errorf("task-list updates = %d; want 2", len(presenter.tasks))
	}
}

func TestTasksHonorStatusFilter(t *testing.T) {
	var gotQuery string
	rt := newRouteTransport()
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		gotQuery = req.URL.RawQuery
		return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
	})

	router, _, _ := newRouter(t, rt, models.RoleUser)
	router.SetStatusFilter("pending")
	router.SwitchView(context.Background(), Tasks)

	if gotQuery != "status=pending" {
		t.Errorf("query = %q; want %q", gotQuery, "status=pending")
	}
}

func TestDashboardPartialFailure(t *testing.T) {
	rt := newRouteTransport()
	rt.handle("/api/dashboard/stats", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"tasks":[{"id":1,"title":"t","status":"pending","priority":"low"}]}`), nil
	})

	router, presenter, notifier := newRouter(t, rt, models.RoleUser)
	router.SwitchView(context.Background(), Dashboard)

	if len(presenter.stats) != 0 {
		t.Errorf("stats region updated despite a failed fetch")
	}
	if len(presenter.recent) != 1 {
		t.Fatalf("recent-tasks updates = %d; a failing sibling fetch must not block it", len(presenter.recent))
	}
	if len(presenter.recent[0]) != 1 {
		t.Errorf("recent tasks = %d; want 1", len(presenter.recent[0]))
	}
	if len(notifier.errors) != 1 {
		t.Errorf("error notifications = %d; want exactly one per failed fetch", len(notifier.errors))
	}
}

func TestDashboardBothRegionsUpdate(t *testing.T) {
	rt := newRouteTransport()
	rt.handle("/api/dashboard/stats", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"stats":{"my_tasks":3,"pending_tasks":1,"in_progress_tasks":1,"completed_tasks":1}}`), nil
	})
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
	})

	router, presenter, notifier := newRouter(t, rt, models.RoleUser)
	router.SwitchView(context.Background(), Dashboard)

	if len(presenter.stats) != 1 || len(presenter.recent) != 1 {
		t.Fatalf("stats updates = %d, recent updates = %d; want 1 and 1",
			len(presenter.stats), len(presenter.recent))
	}
	if got := presenter.stats[0].Total(); got != 3 {
		t.Errorf("total tile = %d; want the my_tasks fallback value 3", got)
	}
	if len(notifier.errors) != 0 {
		t.Errorf("unexpected error notifications: %v", notifier.errors)
	}
}

func TestRecentTasksTrimmedToFive(t *testing.T) {
	// Backends that ignore the limit parameter still get a five-item
	// recent list.
	rt := newRouteTransport()
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		body := `{"tasks":[`
		for i := 1; i <= 7; i++ {
			if i > 1 {
				body += ","
			}
			body += fmt.Sprintf(`{"id":%d,"title":"t%d","status":"pending","priority":"low"}`, i, i)
		}
		body += `]}`
		return jsonResponse(http.StatusOK, body), nil
	})
	rt.handle("/api/dashboard/stats", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"stats":{}}`), nil
	})

	router, presenter, _ := newRouter(t, rt, models.RoleUser)
	router.SwitchView(context.Background(), Dashboard)

	if len(presenter.recent) != 1 || len(presenter.recent[0]) != recentTaskCount {
		t.Errorf("recent tasks = %v; want %d entries", presenter.recent, recentTaskCount)
	}
}

func TestProfileViewUsesSessionData(t *testing.T) {
	rt := newRouteTransport()

	router, presenter, _ := newRouter(t, rt, models.RoleUser)
	router.SwitchView(context.Background(), Profile)

	if len(presenter.profiles) != 1 {
		t.Fatalf("profile updates = %d; want 1", len(presenter.profiles))
	}
	if presenter.profiles[0].Username != "u" {
		t.Errorf("profile = %+v; want the session's user", presenter.profiles[0])
	}
	total := 0
	rt.mu.Lock()
	for _, c := range rt.counts {
		total += c
	}
	rt.mu.Unlock()
	if total != 0 {
		t.Errorf("profile view issued %d requests; session data must be reused", total)
	}
}

func TestStaleResponseDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	rt := newRouteTransport()
	rt.handle("/api/dashboard/stats", func(req *http.Request) (*http.Response, error) {
		close(started)
		<-release
		return jsonResponse(http.StatusOK, `{"stats":{"my_tasks":9}}`), nil
	})
	rt.handle("/api/tasks", func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("limit") != "" {
			// Recent-tasks fetch of the abandoned dashboard load.
			<-release
		}
		return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
	})

	router, presenter, _ := newRouter(t, rt, models.RoleUser)

	done := make(chan struct{})
	go func() {
		router.SwitchView(context.Background(), Dashboard)
		close(done)
	}()

	<-started
	// The user moves on while the dashboard load is still in flight.
	router.SwitchView(context.Background(), Tasks)
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard load did not settle")
	}

	if len(presenter.stats) != 0 {
		t.Errorf("stale dashboard stats were applied after leaving the view")
	}
	if len(presenter.recent) != 0 {
		t.Errorf("stale recent tasks were applied after leaving the view")
	}
	if len(presenter.tasks) != 1 {
		t.Errorf("task-list updates = %d; the new view's load must land", len(presenter.tasks))
	}
}
