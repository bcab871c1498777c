package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docview/citelens/model"
	"github.com/docview/citelens/store"
)

var (
	runsDBPath string
	showDBPath string
)

func init() {
	runsCmd.Flags().StringVar(&runsDBPath, "db", "", "SQLite database path (default: $CITELENS_DB or citelens.db)")
	showCmd.Flags().StringVar(&showDBPath, "db", "", "SQLite database path (default: $CITELENS_DB or citelens.db)")
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved extraction runs",
	Long: `List the extraction runs saved with 'resolve --save'.

Examples:
  citelens runs
  citelens runs --db runs.db --human`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := store.Open(dbPathOrDefault(runsDBPath))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}

	if humanOutput {
		if len(runs) == 0 {
			fmt.Println("No saved runs")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("  %-5d %s  %s  (%d records, mean confidence %.2f)\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.Document,
				run.Summary.Total, run.Summary.MeanConfidence)
		}
	} else {
		if runs == nil {
			runs = []store.Run{}
		}
		outputJSON(runs)
	}

	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the extraction records of a saved run",
	Long: `Show the extraction records of a single saved run.

Example:
  citelens show 3 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitWithError(ExitError, "invalid run id %q", args[0])
	}

	db, err := store.Open(dbPathOrDefault(showDBPath))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			exitWithError(ExitError, "run not found: %d", runID)
		}
		exitWithError(ExitError, "getting run: %v", err)
	}

	records, err := db.ListExtractions(runID)
	if err != nil {
		exitWithError(ExitError, "listing extractions: %v", err)
	}

	if humanOutput {
		fmt.Printf("%s (run %d, %s)\n\n", run.Document, run.ID, run.CreatedAt.Format("2006-01-02 15:04"))
		printRecordsHuman(records)
		printSummaryHuman(run.Summary)
	} else {
		outputJSON(struct {
			Run     *store.Run               `json:"run"`
			Records []model.ExtractionRecord `json:"records"`
		}{Run: run, Records: records})
	}

	return nil
}
