// Package main provides the citelens CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
)

func main() {
	// Optional .env for CITELENS_* overrides; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citelens",
	Short: "Resolve citation links in PDFs to their reference entries",
	Long: `citelens locates the internal link annotations a PDF uses for inline
citations and extracts the bibliographic reference entry each one points
at, together with the detection method and a confidence score.

All commands output JSON by default for easy integration with other
tools; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
