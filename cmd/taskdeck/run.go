package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atinyakov/taskdeck/internal/api"
	"github.com/atinyakov/taskdeck/internal/config"
	"github.com/atinyakov/taskdeck/internal/logger"
	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/atinyakov/taskdeck/internal/session"
	"github.com/atinyakov/taskdeck/internal/term"
	"github.com/atinyakov/taskdeck/internal/view"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive shell",
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// app bundles the wired components of one shell session.
type app struct {
	session *session.Store
	router  *view.Router
	forms   *term.Forms
	api     *api.Client
	prompt  *term.Prompter
	notify  view.Notifier
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
			return err
		}
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	apiClient := api.New(cfg.ServerURL, httpClient, log)
	sess := session.New(apiClient, cfg.StateFile, log)

	renderer := term.NewRenderer(os.Stdout)
	notify := term.NewNotifier(os.Stdout)
	router := view.NewRouter(apiClient, sess, renderer, notify, log)
	prompt := term.NewPrompter(os.Stdin, os.Stdout)
	forms := term.NewForms(apiClient, sess, router, prompt, notify)

	a := &app{session: sess, router: router, forms: forms, api: apiClient, prompt: prompt, notify: notify}

	ctx := context.Background()

	// A restored session is only trusted after the server confirms it;
	// a stale token falls back to the login prompt silently.
	if sess.Restore() {
		if err := sess.Verify(ctx); err != nil {
			log.Debug("restored session rejected", zap.Error(err))
		}
	}

	for {
		if !sess.Authenticated() {
			if !a.loginLoop(ctx) {
				return nil
			}
		}
		if !a.shell(ctx) {
			return nil
		}
	}
}

// loginLoop prompts for credentials until a login succeeds or input
// ends. Returns false on end of input.
func (a *app) loginLoop(ctx context.Context) bool {
	for {
		username, ok := a.prompt.Command("Username: ")
		if !ok {
			return false
		}
		password, ok := a.prompt.Command("Password: ")
		if !ok {
			return false
		}

		if _, err := a.session.Login(ctx, username, password); err != nil {
			a.notify.Error(term.ErrorMessage(err))
			continue
		}
		a.notify.Success("Login successful!")
		return true
	}
}

// shell runs the command loop. Returns false when the user exits,
// true after a logout (the caller re-enters the login loop).
func (a *app) shell(ctx context.Context) bool {
	a.router.SwitchView(ctx, view.Dashboard)

	for {
		line, ok := a.prompt.Command("taskdeck> ")
		if !ok {
			return false
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Println("Commands: dashboard, tasks [status|all], users, profile, new-task, edit-task <id>, del-task <id>, new-user, edit-user <id>, edit-profile, passwd, whoami, logout, exit")
		case "dashboard":
			a.router.SwitchView(ctx, view.Dashboard)
		case "tasks":
			if len(args) > 1 {
				filter := args[1]
				if filter == "all" {
					filter = ""
				}
				a.router.SetStatusFilter(filter)
			}
			a.router.SwitchView(ctx, view.Tasks)
		case "users":
			if !a.session.IsAdmin() {
				a.notify.Error("Insufficient permissions")
				continue
			}
			a.router.SwitchView(ctx, view.Users)
		case "profile":
			a.router.SwitchView(ctx, view.Profile)
		case "new-task":
			a.forms.TaskForm(ctx, nil)
		case "edit-task":
			if task := a.findTask(ctx, args); task != nil {
				a.forms.TaskForm(ctx, task)
			}
		case "del-task":
			if id, ok := parseID(args); ok {
				a.forms.DeleteTask(ctx, id)
			} else {
				fmt.Println("Usage: del-task <id>")
			}
		case "new-user":
			a.forms.UserForm(ctx, nil)
		case "edit-user":
			if user := a.findUser(ctx, args); user != nil {
				a.forms.UserForm(ctx, user)
			}
		case "edit-profile":
			a.forms.ProfileForm(ctx)
		case "passwd":
			a.forms.PasswordForm(ctx)
		case "whoami":
			if user := a.session.Current(); user != nil {
				fmt.Printf("%s (%s)\n", user.DisplayName, user.Role)
			}
		case "logout":
			a.session.Logout()
			a.notify.Info("Logged out successfully")
			return true
		case "exit":
			fmt.Println("Bye")
			return false
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func parseID(args []string) (int64, bool) {
	if len(args) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// findTask fetches the current task list and picks the requested one.
// The contract has no single-task endpoint, so the list is the source.
func (a *app) findTask(ctx context.Context, args []string) *models.Task {
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: edit-task <id>")
		return nil
	}
	tasks, err := a.api.Tasks(ctx, api.TaskFilter{})
	if err != nil {
		a.notify.Error(term.ErrorMessage(err))
		return nil
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	a.notify.Error("Task not found")
	return nil
}

func (a *app) findUser(ctx context.Context, args []string) *models.UserProfile {
	if !a.session.IsAdmin() {
		a.notify.Error("Insufficient permissions")
		return nil
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: edit-user <id>")
		return nil
	}
	users, err := a.api.Users(ctx)
	if err != nil {
		a.notify.Error(term.ErrorMessage(err))
		return nil
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	a.notify.Error("User not found")
	return nil
}
