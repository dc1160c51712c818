package term

import (
	"context"
	"errors"
	"strconv"

	"github.com/atinyakov/taskdeck/internal/api"
	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/atinyakov/taskdeck/internal/session"
	"github.com/atinyakov/taskdeck/internal/view"
)

// Forms drives the create/edit flows: it collects input through the
// prompter, submits through the API client, and triggers a refresh of
// the current view after a successful mutation. Every failure surfaces
// exactly one notification; nothing fails silently.
type Forms struct {
	api     *api.Client
	session *session.Store
	router  *view.Router
	prompt  *Prompter
	notify  view.Notifier
}

// NewForms wires the form controllers to their collaborators.
func NewForms(apiClient *api.Client, sess *session.Store, router *view.Router, prompt *Prompter, notify view.Notifier) *Forms {
	return &Forms{api: apiClient, session: sess, router: router, prompt: prompt, notify: notify}
}

// ErrorMessage maps a request failure to the text shown to the user:
// server rejections verbatim, transport failures as a generic retry
// suggestion.
func ErrorMessage(err error) string {
	if api.IsNetwork(err) {
		return "Network error. Please try again."
	}
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// TaskForm collects task fields and submits a create (existing == nil)
// or update.
func (f *Forms) TaskForm(ctx context.Context, existing *models.Task) {
	req := api.TaskRequest{
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
	}
	if existing != nil {
		req.Title = existing.Title
		req.Description = existing.Description
		req.Status = existing.Status
		req.Priority = existing.Priority
		if existing.DueDate != "" {
			due := existing.DueDate
			req.DueDate = &due
		}
		req.AssigneeUID = existing.AssigneeUID
	}

	req.Title = f.prompt.LineDefault("Title", req.Title)
	req.Description = f.prompt.LineDefault("Description", req.Description)
	req.Status = models.TaskStatus(f.prompt.LineDefault("Status (pending/in_progress/completed/cancelled)", string(req.Status)))
	req.Priority = models.TaskPriority(f.prompt.LineDefault("Priority (low/medium/high/urgent)", string(req.Priority)))

	if due := f.prompt.Line("Due date (RFC3339, empty for none)"); due != "" {
		req.DueDate = &due
	}

	// Assignee selection is an admin affordance; regular users submit
	// without one and the server scopes the rest.
	if f.session.IsAdmin() {
		f.promptAssignee(ctx, &req)
	}

	var err error
	if existing == nil {
		_, err = f.api.CreateTask(ctx, req)
	} else {
		_, err = f.api.UpdateTask(ctx, existing.ID, req)
	}
	if err != nil {
		f.notify.Error(ErrorMessage(err))
		return
	}

	if existing == nil {
		f.notify.Success("Task created successfully!")
	} else {
		f.notify.Success("Task updated successfully!")
	}
	f.refreshAfterTaskChange(ctx)
}

// promptAssignee lists users and records the chosen ID, if any.
func (f *Forms) promptAssignee(ctx context.Context, req *api.TaskRequest) {
	users, err := f.api.Users(ctx)
	if err != nil {
		// Leave the assignee untouched; the submit itself still works.
		return
	}
	for _, u := range users {
		f.notify.Info(strconv.FormatInt(u.ID, 10) + ": " + u.DisplayName)
	}
	raw := f.prompt.Line("Assignee ID (empty for unassigned)")
	if raw == "" {
		req.AssigneeUID = nil
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.notify.Error("Invalid assignee ID")
		return
	}
	req.AssigneeUID = &id
}

// DeleteTask confirms and deletes a task, then refreshes the view.
func (f *Forms) DeleteTask(ctx context.Context, id int64) {
	if !f.prompt.Confirm("Are you sure you want to delete this task?") {
		return
	}

	if err := f.api.DeleteTask(ctx, id); err != nil {
		f.notify.Error(ErrorMessage(err))
		return
	}
	f.notify.Success("Task deleted successfully!")
	f.refreshAfterTaskChange(ctx)
}

// refreshAfterTaskChange reloads the active view when it shows task
// data; other views keep their content.
func (f *Forms) refreshAfterTaskChange(ctx context.Context) {
	switch f.router.Current() {
	case view.Tasks, view.Dashboard:
		f.router.Refresh(ctx)
	}
}

// UserForm collects user fields and submits a create (existing == nil)
// or update. Only admin sessions may open it.
func (f *Forms) UserForm(ctx context.Context, existing *models.UserProfile) {
	if !f.session.IsAdmin() {
		return
	}

	req := api.UserRequest{Role: models.RoleUser}
	if existing != nil {
		req.Username = existing.Username
		req.Email = existing.Email
		req.DisplayName = existing.DisplayName
		req.Role = existing.Role
	}

	req.Username = f.prompt.LineDefault("Username", req.Username)
	req.Email = f.prompt.LineDefault("Email", req.Email)
	req.DisplayName = f.prompt.LineDefault("Display name", req.DisplayName)
	req.Role = models.Role(f.prompt.LineDefault(f.roleLabel(), string(req.Role)))

	if existing != nil {
		active := f.prompt.LineDefault("Active (true/false)", strconv.FormatBool(existing.IsActive)) == "true"
		req.IsActive = &active
		req.Password = f.prompt.Line("Password (leave blank to keep current)")
	} else {
		req.Password = f.prompt.Line("Password")
	}

	var err error
	if existing == nil {
		_, err = f.api.CreateUser(ctx, req)
	} else {
		_, err = f.api.UpdateUser(ctx, existing.ID, req)
	}
	if err != nil {
		f.notify.Error(ErrorMessage(err))
		return
	}

	if existing == nil {
		f.notify.Success("User created successfully!")
	} else {
		f.notify.Success("User updated successfully!")
	}
	if f.router.Current() == view.Users {
		f.router.Refresh(ctx)
	}
}

// roleLabel lists the roles the session may assign: only superadmins
// can grant superadmin.
func (f *Forms) roleLabel() string {
	if user := f.session.Current(); user != nil && user.Role == models.RoleSuperadmin {
		return "Role (user/admin/superadmin)"
	}
	return "Role (user/admin)"
}

// ProfileForm edits the session's own profile.
func (f *Forms) ProfileForm(ctx context.Context) {
	user := f.session.Current()
	if user == nil {
		return
	}

	displayName := f.prompt.LineDefault("Display name", user.DisplayName)
	email := f.prompt.LineDefault("Email", user.Email)

	if _, err := f.session.UpdateProfile(ctx, displayName, email); err != nil {
		f.notify.Error(ErrorMessage(err))
		return
	}
	f.notify.Success("Profile updated successfully!")
	if f.router.Current() == view.Profile {
		f.router.Refresh(ctx)
	}
}

// PasswordForm rotates the session's password.
func (f *Forms) PasswordForm(ctx context.Context) {
	current := f.prompt.Line("Current password")
	updated := f.prompt.Line("New password")

	if err := f.session.ChangePassword(ctx, current, updated); err != nil {
		f.notify.Error(ErrorMessage(err))
		return
	}
	f.notify.Success("Password changed successfully!")
}
