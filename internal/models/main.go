// Package models defines the core data structures exchanged with the
// task-management API: users, tasks, and dashboard statistics.
package models

// Role identifies a user's permission level.
type Role string

const (
	// RoleUser is a regular user who only sees their own assigned tasks.
	RoleUser Role = "user"
	// RoleAdmin can manage tasks and users.
	RoleAdmin Role = "admin"
	// RoleSuperadmin can additionally manage other admins.
	RoleSuperadmin Role = "superadmin"
)

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// TaskStatus defines the set of valid task lifecycle states.
type TaskStatus string

const (
	// StatusPending marks a task that has not been started.
	StatusPending TaskStatus = "pending"
	// StatusInProgress marks a task that is being worked on.
	StatusInProgress TaskStatus = "in_progress"
	// StatusCompleted marks a finished task.
	StatusCompleted TaskStatus = "completed"
	// StatusCancelled marks an abandoned task.
	StatusCancelled TaskStatus = "cancelled"
)

// TaskPriority defines the set of valid task priorities.
type TaskPriority string

const (
	// PriorityLow is the lowest priority.
	PriorityLow TaskPriority = "low"
	// PriorityMedium is the default priority.
	PriorityMedium TaskPriority = "medium"
	// PriorityHigh marks an important task.
	PriorityHigh TaskPriority = "high"
	// PriorityUrgent marks a task that needs immediate attention.
	PriorityUrgent TaskPriority = "urgent"
)

// UserProfile represents an application user as returned by the server.
type UserProfile struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the login name.
	Username string `json:"username"`
	// Email is the user's email address.
	Email string `json:"email"`
	// DisplayName is the human-readable name shown in the UI.
	DisplayName string `json:"display_name"`
	// Role is the user's permission level.
	Role Role `json:"role"`
	// CreatedAt is the server-formatted creation timestamp.
	CreatedAt string `json:"created_at"`
	// IsActive indicates whether the account is enabled.
	IsActive bool `json:"is_active"`
}

// Task represents a single task snapshot fetched from the server.
// Tasks are never owned client-side; the current view is reloaded
// after every mutation instead of patching local copies.
type Task struct {
	// ID is the unique identifier for the task.
	ID int64 `json:"id"`
	// Title is the short task summary.
	Title string `json:"title"`
	// Description holds the optional long-form details.
	Description string `json:"description"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// Priority is the task's urgency level.
	Priority TaskPriority `json:"priority"`
	// DueDate is the server-formatted deadline, empty when unset.
	DueDate string `json:"due_date"`
	// CreatedAt is the server-formatted creation timestamp.
	CreatedAt string `json:"created_at"`
	// UpdatedAt is the server-formatted last-modification timestamp.
	UpdatedAt string `json:"updated_at"`
	// AssigneeUID is the assigned user's ID, nil when unassigned.
	AssigneeUID *int64 `json:"assignee_uid"`
	// CreatedByUID is the creating user's ID.
	CreatedByUID int64 `json:"created_by_uid"`
	// Assignee is the embedded profile of the assigned user, if any.
	Assignee *UserProfile `json:"assignee"`
	// Creator is the embedded profile of the creating user, if any.
	Creator *UserProfile `json:"creator"`
}

// AssigneeName returns the assignee's display name or "Unassigned".
func (t Task) AssigneeName() string {
	if t.Assignee != nil {
		return t.Assignee.DisplayName
	}
	return "Unassigned"
}

// DashboardStats holds the aggregate counters shown on the dashboard.
// The server returns total_tasks for admin roles and my_tasks for
// regular users; the user/admin-only fields decode to zero when the
// response omits them.
type DashboardStats struct {
	TotalTasks      int `json:"total_tasks"`
	MyTasks         int `json:"my_tasks"`
	PendingTasks    int `json:"pending_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	OverdueTasks    int `json:"overdue_tasks"`
	TotalUsers      int `json:"total_users"`
	ActiveUsers     int `json:"active_users"`
}

// Total returns the task count for the "total" dashboard tile, falling
// back to MyTasks when the role-scoped response omits total_tasks.
func (s DashboardStats) Total() int {
	if s.TotalTasks != 0 {
		return s.TotalTasks
	}
	return s.MyTasks
}
