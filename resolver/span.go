package resolver

import (
	"github.com/docview/citelens/layout"
	"github.com/docview/citelens/model"
)

// spanCandidates returns the candidate lines for boundary detection.
// When the target sits near the page's bottom edge and a next page
// exists, the next page's filtered lines are pulled in, shifted below
// the current page's coordinate range, and marked as continuation
// lines so ordering stays monotonic across the boundary.
func (r *Resolver) spanCandidates(loc *model.TargetLocation, analysis *pageAnalysis) []layout.Line {
	base := analysis.filtered

	if loc.Y >= r.config.SpanEdgeDistance {
		return base
	}
	nextPage := loc.Page + 1
	if nextPage >= r.source.PageCount() {
		return base
	}

	next := r.pageAnalysis(nextPage)
	if len(next.filtered) == 0 {
		// Next-page fetch failure or an empty page: proceed as if no
		// next page existed.
		return base
	}

	r.logger.Debug("pulling continuation lines from next page",
		"target_page", loc.Page, "next_page", nextPage,
		"lines", len(next.filtered))

	candidates := make([]layout.Line, 0, len(base)+len(next.filtered))
	candidates = append(candidates, base...)
	for _, line := range next.filtered {
		shifted := line
		shifted.YPosition -= analysis.bounds.Height
		shifted.IsNextPage = true
		candidates = append(candidates, shifted)
	}
	return candidates
}
