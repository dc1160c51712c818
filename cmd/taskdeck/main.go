// Package main is the taskdeck command-line client for the
// task-management API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	serverURL string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Terminal client for the task-management API",
	Long:  "taskdeck is an interactive terminal client for the task-management API: it signs in, shows the dashboard, and manages tasks and users from a shell.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
