// Package term is the terminal implementation of the rendering layer:
// it consumes the view-models produced by the loaders and prints them,
// and it collects form input from the user.
package term

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/atinyakov/taskdeck/internal/view"
)

// Renderer prints view-models to a writer. It implements view.Presenter.
type Renderer struct {
	out io.Writer
}

// NewRenderer returns a Renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) ActivateView(v view.View) {
	fmt.Fprintf(r.out, "\n=== %s ===\n", v)
}

func (r *Renderer) ShowDashboardStats(stats models.DashboardStats) {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total tasks:\t%d\n", stats.Total())
	fmt.Fprintf(w, "Pending:\t%d\n", stats.PendingTasks)
	fmt.Fprintf(w, "In progress:\t%d\n", stats.InProgressTasks)
	fmt.Fprintf(w, "Completed:\t%d\n", stats.CompletedTasks)
	if stats.OverdueTasks > 0 {
		fmt.Fprintf(w, "Overdue:\t%d\n", stats.OverdueTasks)
	}
	if stats.TotalUsers > 0 {
		fmt.Fprintf(w, "Users:\t%d (%d active)\n", stats.TotalUsers, stats.ActiveUsers)
	}
	w.Flush()
}

func (r *Renderer) ShowRecentTasks(tasks []models.Task) {
	fmt.Fprintln(r.out, "Recent tasks:")
	r.printTasks(tasks)
}

func (r *Renderer) ShowTasks(tasks []models.Task) {
	r.printTasks(tasks)
}

func (r *Renderer) printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "No tasks found")
		return
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEE")
	for _, t := range tasks {
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.Priority, due, t.AssigneeName())
	}
	w.Flush()
}

func (r *Renderer) ShowUsers(users []models.UserProfile) {
	if len(users) == 0 {
		fmt.Fprintln(r.out, "No users found")
		return
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n",
			u.ID, u.Username, u.DisplayName, u.Email, u.Role, u.IsActive)
	}
	w.Flush()
}

func (r *Renderer) ShowProfile(user models.UserProfile) {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", user.Username)
	fmt.Fprintf(w, "Name:\t%s\n", user.DisplayName)
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	fmt.Fprintf(w, "Role:\t%s\n", user.Role)
	w.Flush()
}

// Notifier prints one line per notification. It implements view.Notifier.
type Notifier struct {
	out io.Writer
}

// NewNotifier returns a Notifier writing to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Success(msg string) { fmt.Fprintf(n.out, "[ok] %s\n", msg) }
func (n *Notifier) Error(msg string)   { fmt.Fprintf(n.out, "[error] %s\n", msg) }
func (n *Notifier) Info(msg string)    { fmt.Fprintf(n.out, "[info] %s\n", msg) }
