package view

import (
	"context"
	"sync"

	"github.com/atinyakov/taskdeck/internal/api"
	"go.uber.org/zap"
)

// recentTaskCount is how many tasks the dashboard's recent list shows.
const recentTaskCount = 5

// loadDashboard fetches the aggregate stats and the most recent tasks
// concurrently. The two fetches are independent: neither waits on the
// other's result, each updates its own region as it resolves, and a
// failure in one never blocks the other's success. loadDashboard itself
// returns once both have settled.
func (r *Router) loadDashboard(ctx context.Context, gen string) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		stats, err := r.api.DashboardStats(ctx)
		if err != nil {
			r.log.Debug("dashboard stats load failed", zap.Error(err))
			r.notify.Error("Failed to load dashboard data")
			return
		}
		r.apply(gen, func() { r.present.ShowDashboardStats(*stats) })
	}()

	go func() {
		defer wg.Done()
		tasks, err := r.api.Tasks(ctx, api.TaskFilter{Limit: recentTaskCount})
		if err != nil {
			r.log.Debug("recent tasks load failed", zap.Error(err))
			r.notify.Error("Failed to load dashboard data")
			return
		}
		if len(tasks) > recentTaskCount {
			tasks = tasks[:recentTaskCount]
		}
		r.apply(gen, func() { r.present.ShowRecentTasks(tasks) })
	}()

	wg.Wait()
}

// loadTasks fetches the task list honoring the active status filter.
// On failure the previously rendered list stays in place.
func (r *Router) loadTasks(ctx context.Context, gen string) {
	tasks, err := r.api.Tasks(ctx, api.TaskFilter{Status: r.StatusFilter()})
	if err != nil {
		r.log.Debug("tasks load failed", zap.Error(err))
		r.notify.Error("Failed to load tasks")
		return
	}
	r.apply(gen, func() { r.present.ShowTasks(tasks) })
}

// loadUsers fetches the user list. Non-admin sessions skip the fetch
// entirely; this mirrors what the server would reject anyway and is a
// UX shortcut, not an authorization check.
func (r *Router) loadUsers(ctx context.Context, gen string) {
	if !r.session.IsAdmin() {
		return
	}

	users, err := r.api.Users(ctx)
	if err != nil {
		r.log.Debug("users load failed", zap.Error(err))
		r.notify.Error("Failed to load users")
		return
	}
	r.apply(gen, func() { r.present.ShowUsers(users) })
}
