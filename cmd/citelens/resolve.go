package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docview/citelens"
	"github.com/docview/citelens/config"
	"github.com/docview/citelens/store"
)

var (
	resolveConfigPath    string
	resolveDBPath        string
	resolveSave          bool
	resolveConcurrency   int
	resolveRateLimit     float64
	resolveMinConfidence float64
	resolveVerbose       bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveConfigPath, "config", "", "Path to YAML config file (default: $CITELENS_CONFIG if set)")
	resolveCmd.Flags().StringVar(&resolveDBPath, "db", "", "SQLite database path (overrides config)")
	resolveCmd.Flags().BoolVar(&resolveSave, "save", false, "Persist the run to the database")
	resolveCmd.Flags().IntVar(&resolveConcurrency, "concurrency", 0, "Worker count (overrides config)")
	resolveCmd.Flags().Float64Var(&resolveRateLimit, "rate-limit", 0, "Max anchors per second, 0 = unlimited (overrides config)")
	resolveCmd.Flags().Float64Var(&resolveMinConfidence, "min-confidence", 0, "Drop records below this confidence")
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "Log per-anchor diagnostics to stderr")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file.pdf>",
	Short: "Resolve all citation links in a PDF",
	Long: `Resolve every citation link annotation in a PDF to the reference
entry it points at.

Interrupting the run (Ctrl-C) is not fatal: the records resolved so far
are still reported, and saved when --save is given.

Examples:
  citelens resolve paper.pdf
  citelens resolve paper.pdf --human
  citelens resolve paper.pdf --save --db runs.db
  citelens resolve paper.pdf --concurrency 8 --min-confidence 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg := loadConfig(resolveConfigPath)

	level := slog.LevelWarn
	if resolveVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rc := cfg.ResolverConfig()
	rc.Logger = logger

	ext := citelens.Open(filename).WithConfig(rc)
	if resolveConcurrency > 0 {
		ext = ext.Concurrency(resolveConcurrency)
	}
	if resolveRateLimit > 0 {
		ext = ext.RateLimit(resolveRateLimit)
	}
	if resolveMinConfidence > 0 {
		ext = ext.MinConfidence(resolveMinConfidence)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := ext.Resolve(ctx)
	if err != nil {
		exitWithError(ExitError, "resolving %s: %v", filename, err)
	}

	if resolveSave {
		dbPath := cfg.Database
		if resolveDBPath != "" {
			dbPath = resolveDBPath
		}
		db, err := store.Open(dbPath)
		if err != nil {
			exitWithError(ExitError, "opening database: %v", err)
		}
		defer db.Close()

		runID, err := db.SaveRun(filename, result.Records, result.Summary)
		if err != nil {
			exitWithError(ExitError, "saving run: %v", err)
		}
		logger.Info("run saved", "run_id", runID, "db", dbPath)
	}

	if humanOutput {
		printRecordsHuman(result.Records)
		printSummaryHuman(result.Summary)
	} else {
		outputJSON(result)
	}

	return nil
}

// loadConfig reads the config file named by the flag or the
// CITELENS_CONFIG environment variable, falling back to defaults when
// neither is set.
func loadConfig(path string) config.Config {
	if path == "" {
		path = os.Getenv("CITELENS_CONFIG")
	}
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// dbPathOrDefault resolves the database path from the flag, the
// CITELENS_DB environment variable, or the config default, in that
// order.
func dbPathOrDefault(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CITELENS_DB"); env != "" {
		return env
	}
	return config.Default().Database
}
