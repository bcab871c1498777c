package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/docview/citelens/model"
)

// Reference text truncation length for list-style human output.
const listTextMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// printRecordsHuman prints extraction records in human-readable format.
func printRecordsHuman(records []model.ExtractionRecord) {
	for i, rec := range records {
		flags := ""
		if rec.SpansPages {
			flags = " [spans pages]"
		}
		fmt.Printf("%d. %s (p.%d -> p.%d)%s\n", i+1, rec.CitationID, rec.SourcePage+1, rec.TargetPage+1, flags)
		fmt.Printf("   %s\n", truncateString(rec.ReferenceText, listTextMaxLen))
		fmt.Printf("   method=%s confidence=%.2f lines=%d\n\n", rec.Method, rec.Confidence, rec.LinesUsed)
	}
}

// printSummaryHuman prints a run summary in human-readable format.
func printSummaryHuman(summary model.ExtractionSummary) {
	fmt.Printf("%d citations resolved (mean confidence %.2f)\n", summary.Total, summary.MeanConfidence)
	fmt.Printf("  high confidence (>%.1f): %d\n", model.HighConfidence, summary.HighConfidence)
	fmt.Printf("  low confidence (<%.1f):  %d\n", model.LowConfidence, summary.LowConfidence)
	if len(summary.ByMethod) > 0 {
		fmt.Printf("  by method: %s\n", formatByMethod(summary.ByMethod))
	}
}

// formatByMethod renders per-method counts in a stable order.
func formatByMethod(byMethod map[model.Method]int) string {
	methods := make([]string, 0, len(byMethod))
	for method := range byMethod {
		methods = append(methods, string(method))
	}
	sort.Strings(methods)

	parts := make([]string, 0, len(methods))
	for _, method := range methods {
		parts = append(parts, fmt.Sprintf("%s=%d", method, byMethod[model.Method(method)]))
	}
	return strings.Join(parts, " ")
}
