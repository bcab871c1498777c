package resolver

import (
	"sync"

	"github.com/docview/citelens/layout"
	"github.com/docview/citelens/model"
)

// pageEntry is the single-flight cell for one page's analysis: the
// first requester computes, concurrent requesters await the same
// result.
type pageEntry struct {
	once     sync.Once
	analysis *pageAnalysis
}

// pageAnalysis holds everything the boundary scan needs about a page.
// Computed at most once per page per run and read-only afterward.
type pageAnalysis struct {
	bounds   model.Bounds
	lines    []layout.Line
	filtered []layout.Line
	metrics  layout.Metrics
	columns  *layout.ColumnLayout
}

// pageAnalysis returns the memoized analysis for a page, computing it
// on first request.
func (r *Resolver) pageAnalysis(page int) *pageAnalysis {
	r.mu.Lock()
	entry, ok := r.pages[page]
	if !ok {
		entry = &pageEntry{}
		r.pages[page] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.analysis = r.analyzePage(page)
	})
	return entry.analysis
}

// analyzePage runs reconstruction, metrics derivation, column
// detection, and candidate filtering for one page. Missing or
// malformed text is recoverable: it yields zero candidate lines, which
// flows naturally to a "(no text found)" record downstream.
func (r *Resolver) analyzePage(page int) *pageAnalysis {
	runs, err := r.source.PageTextRuns(page)
	if err != nil {
		r.logger.Warn("failed to read page text, treating page as empty",
			"page", page, "error", err)
		runs = nil
	}

	bounds, err := r.source.PageBounds(page)
	if err != nil {
		r.logger.Warn("failed to read page bounds, thresholds fall back to minimums",
			"page", page, "error", err)
		bounds = model.Bounds{}
	}

	lines := r.reconstructor.Reconstruct(runs, page)

	return &pageAnalysis{
		bounds:   bounds,
		lines:    lines,
		filtered: r.filter.Filter(lines),
		metrics:  r.metrics.Analyze(lines, bounds),
		columns:  r.columns.Detect(lines, bounds.Width),
	}
}
