package view

import (
	"context"
	"sync"

	"github.com/atinyakov/taskdeck/internal/api"
	"github.com/atinyakov/taskdeck/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router tracks the active view and dispatches the load action bound to
// it. Every SwitchView call re-runs the target's load action, including
// a switch to the already-active view; the side effect is always a
// fresh fetch.
//
// Each activation is stamped with a generation token. A loader result
// is applied only while its token still matches the current generation,
// so a response that arrives after the user has moved on is dropped
// instead of clobbering the new view.
type Router struct {
	api      *api.Client
	session  *session.Store
	present  Presenter
	notify   Notifier
	log      *zap.Logger

	mu           sync.Mutex
	current      View
	generation   string
	statusFilter string
}

// NewRouter wires a Router to its collaborators.
func NewRouter(apiClient *api.Client, sess *session.Store, present Presenter, notify Notifier, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		api:     apiClient,
		session: sess,
		present: present,
		notify:  notify,
		log:     log,
	}
}

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// StatusFilter returns the task-list status filter ("" means all).
func (r *Router) StatusFilter() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusFilter
}

// SetStatusFilter records the task-list status filter. It takes effect
// on the next tasks load.
func (r *Router) SetStatusFilter(status string) {
	r.mu.Lock()
	r.statusFilter = status
	r.mu.Unlock()
}

// SwitchView activates target and runs its load action. The users view
// is a client-side convenience gate only: non-admin sessions skip the
// fetch, while the server independently enforces authorization.
func (r *Router) SwitchView(ctx context.Context, target View) {
	r.mu.Lock()
	r.current = target
	gen := uuid.NewString()
	r.generation = gen
	r.mu.Unlock()

	r.present.ActivateView(target)
	r.log.Debug("view switched", zap.String("view", string(target)), zap.String("generation", gen))

	switch target {
	case Dashboard:
		r.loadDashboard(ctx, gen)
	case Tasks:
		r.loadTasks(ctx, gen)
	case Users:
		r.loadUsers(ctx, gen)
	case Profile:
		// Profile data already lives in the session; no fetch.
		if user := r.session.Current(); user != nil {
			r.apply(gen, func() { r.present.ShowProfile(*user) })
		}
	}
}

// Refresh re-runs the load action for the active view. Form controllers
// call this after a successful mutation.
func (r *Router) Refresh(ctx context.Context) {
	r.SwitchView(ctx, r.Current())
}

// apply runs fn only if gen is still the active generation, i.e. the
// view that requested the load has not been left since.
func (r *Router) apply(gen string, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		r.log.Debug("dropping stale view update", zap.String("generation", gen))
		return false
	}
	fn()
	return true
}
