package main

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/taskdeck/internal/models"
	"github.com/atinyakov/taskdeck/internal/stub"
	"github.com/spf13/cobra"
)

var demoAddr string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Serve an in-memory stub of the task API for local use",
	Long:  "demo starts the in-memory API stub with seeded sample data, so the shell can be tried without a real backend: taskdeck run --server http://localhost:8080",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	srv := stub.New()

	aliceID := srv.AddUser(models.UserProfile{
		Username:    "alice",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Role:        models.RoleUser,
		IsActive:    true,
	}, "alice123")

	srv.AddTask(models.Task{
		Title:        "Prepare release notes",
		Description:  "Collect the changes for the next release",
		Status:       models.StatusInProgress,
		Priority:     models.PriorityHigh,
		AssigneeUID:  &aliceID,
		CreatedByUID: 1,
	})
	srv.AddTask(models.Task{
		Title:        "Review onboarding docs",
		Priority:     models.PriorityLow,
		AssigneeUID:  &aliceID,
		CreatedByUID: 1,
	})

	fmt.Printf("Serving API stub on %s (admin/admin123, alice/alice123)\n", demoAddr)
	return http.ListenAndServe(demoAddr, srv.Router())
}
