package main

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "interviewd",
	Short: "Interview console backend",
	Long: `interviewd serves the interview console API: the question bank, templates,
interviews, per-interviewer scores and the weighted pass/fail evaluation.

Configuration comes from the environment, optionally seeded from the .env
file named by ENV_PATH.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
