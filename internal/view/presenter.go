// Package view implements the client's screen state machine: which of
// the four views is active, and the loader that feeds each one. Loaders
// hand plain view-models to a Presenter; rendering itself lives behind
// that interface so the state machine stays testable in isolation.
package view

import "github.com/atinyakov/taskdeck/internal/models"

// View names one top-level screen of the application.
type View string

const (
	// Dashboard shows aggregate stats and the most recent tasks.
	Dashboard View = "dashboard"
	// Tasks shows the task list, honoring the active status filter.
	Tasks View = "tasks"
	// Users shows the user list; admin roles only.
	Users View = "users"
	// Profile shows the session's own profile; no fetch needed.
	Profile View = "profile"
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	switch v {
	case Dashboard, Tasks, Users, Profile:
		return true
	}
	return false
}

// Presenter consumes view-models produced by the loaders. Each method
// replaces one disjoint region of the UI; a region keeps its previous
// content until its method is called again.
type Presenter interface {
	// ActivateView marks the given view as the active one.
	ActivateView(v View)
	// ShowDashboardStats replaces the stats region.
	ShowDashboardStats(stats models.DashboardStats)
	// ShowRecentTasks replaces the recent-tasks region.
	ShowRecentTasks(tasks []models.Task)
	// ShowTasks replaces the task-list region.
	ShowTasks(tasks []models.Task)
	// ShowUsers replaces the user-list region.
	ShowUsers(users []models.UserProfile)
	// ShowProfile replaces the profile region.
	ShowProfile(user models.UserProfile)
}

// Notifier surfaces one user-visible message per completed or failed
// operation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}
