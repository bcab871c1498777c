// Package layout reconstructs page structure from positioned text runs.
//
// The source content model gives no line, paragraph, or column
// boundaries, only positioned runs; everything here is inferred from
// geometry and local text patterns.
//
// # Pipeline
//
// The package provides the geometric stages of the citation resolution
// pipeline:
//
//   - [Reconstructor] - groups runs into [Line] values by y-proximity,
//     splitting column-mates that share a baseline on wide x-gaps
//   - [MetricsAnalyzer] - derives per-page adaptive thresholds
//     ([Metrics]) from the reconstructed lines and page bounds
//   - [ColumnDetector] - detects two-column layouts from line start
//     clusters ([ColumnLayout])
//   - [LineFilter] - removes non-reference lines by font distribution,
//     IQR position bounds, and content heuristics
//
// # Configuration
//
// Each stage can be configured independently:
//
//	config := layout.DefaultLineConfig()
//	config.YTolerance = 3.0
//	rec := layout.NewReconstructorWithConfig(config)
//	lines := rec.Reconstruct(runs, pageIndex)
//
// All stages are deterministic and idempotent given the same input;
// per-page results are safe to memoize and share across goroutines.
package layout
