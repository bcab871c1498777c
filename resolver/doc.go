// Package resolver orchestrates citation-to-reference resolution for
// one document.
//
// The [Resolver] iterates every page's link annotations, selects the
// ones whose destination carries the reserved "cite." prefix, resolves
// each destination through the document source, and drives the layout
// and boundary-scan stages to produce one extraction record per
// anchor.
//
// # Concurrency
//
// Anchors are embarrassingly parallel once their target page's
// analysis exists. Workers are bounded by Config.Concurrency and
// optionally rate limited against the text backend. Per-page analysis
// (lines, thresholds, columns, candidate filtering) is computed at
// most once per run behind a single-flight cache; concurrent anchors
// targeting the same page share the result.
//
// Cancellation stops dispatching new anchors and lets in-flight work
// finish; the partial record set returned is valid output, not an
// error.
//
// # Failure policy
//
// No condition inside the pipeline for a single anchor propagates as
// a hard failure of the run. Broken destinations are logged and
// skipped, pages without extractable text yield "(no text found)"
// records, and a failed next-page fetch simply disables span handling
// for that anchor.
package resolver
