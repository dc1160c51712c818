package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskdeck\nVersion: %s\nBuild Date: %s\n",
			orDefault(version, "N/A"), orDefault(buildDate, "N/A"))
	},
}

// orDefault mirrors cmp.Or for two strings; cmp.Or needs Go 1.22+.
func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
