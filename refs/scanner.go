package refs

import (
	"sort"
	"strings"

	"github.com/docview/citelens/layout"
	"github.com/docview/citelens/model"
)

// scanState drives the boundary scan. The scan starts in
// stateSearching, enters stateAccumulating on the first line matching
// any start pattern, and finishes in stateDone when the next entry or
// a section terminator begins.
type scanState int

const (
	stateSearching scanState = iota
	stateAccumulating
	stateDone
)

// ScanConfig holds configuration for boundary detection
type ScanConfig struct {
	// PatternConfidence is assigned when a start pattern anchors the
	// extraction (default: 0.8)
	PatternConfidence float64

	// ProximityConfidence is assigned to the pattern-less fallback
	// join (default: 0.3)
	ProximityConfidence float64

	// SpanBonus is added when assembling the entry required
	// continuation lines from the next page (default: 0.1)
	SpanBonus float64

	// MaxTextRunes caps the cleaned reference text (default: 1000)
	MaxTextRunes int
}

// DefaultScanConfig returns sensible default configuration
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		PatternConfidence:   0.8,
		ProximityConfidence: 0.3,
		SpanBonus:           0.1,
		MaxTextRunes:        1000,
	}
}

// Extraction is the outcome of one boundary scan.
type Extraction struct {
	Text       string
	Method     model.Method
	Confidence float64
	LinesUsed  int
	SpansPages bool

	// XFilteredCount is the number of candidate lines that survived
	// the horizontal filter, exposed for diagnostics.
	XFilteredCount int
}

// Scanner locates the reference entry a citation anchor points at and
// assembles its full text.
type Scanner struct {
	config ScanConfig
}

// NewScanner creates a scanner with default configuration
func NewScanner() *Scanner {
	return &Scanner{
		config: DefaultScanConfig(),
	}
}

// NewScannerWithConfig creates a scanner with custom configuration
func NewScannerWithConfig(config ScanConfig) *Scanner {
	return &Scanner{
		config: config,
	}
}

// Detect runs the full boundary scan against the filtered candidate
// lines: proximity filter around the target, horizontal filter inside
// the anchor's column, ordering, pattern scan, and fallback.
func (s *Scanner) Detect(lines []layout.Line, target model.Point, metrics layout.Metrics, columns *layout.ColumnLayout) Extraction {
	candidates := s.proximityFilter(lines, searchRegion(target, metrics), metrics.SearchRange)
	candidates = s.horizontalFilter(candidates, target.X, metrics.XTolerance, columns)
	orderCandidates(candidates)

	ext := s.scan(candidates)
	ext.XFilteredCount = len(candidates)

	ext.Text = CleanText(ext.Text, s.config.MaxTextRunes)
	if ext.Text == "" {
		return Extraction{
			Text:           model.NoTextFound,
			Method:         model.MethodNone,
			Confidence:     0,
			XFilteredCount: len(candidates),
		}
	}

	if ext.SpansPages {
		ext.Confidence += s.config.SpanBonus
	}
	ext.Confidence = clamp01(ext.Confidence)
	return ext
}

// searchRegion is the rectangle a reference entry may start in: the
// x-tolerance either side of the anchor, the search range below it.
func searchRegion(target model.Point, metrics layout.Metrics) model.BBox {
	return model.BBox{
		X:      target.X - metrics.XTolerance,
		Y:      target.Y - metrics.SearchRange,
		Width:  2 * metrics.XTolerance,
		Height: metrics.SearchRange,
	}
}

// proximityFilter keeps same-page lines starting inside the search
// region and next-page lines near the top of the continuation page.
// References are read downward from the anchor on the same page but
// upward from the top of the following page, hence the asymmetry.
func (s *Scanner) proximityFilter(lines []layout.Line, region model.BBox, searchRange float64) []layout.Line {
	// Continuation lines sit in negative-offset space; their "top of
	// page" is the maximum y among them.
	maxNextY := 0.0
	haveNext := false
	for i := range lines {
		if lines[i].IsNextPage {
			if !haveNext || lines[i].YPosition > maxNextY {
				maxNextY = lines[i].YPosition
			}
			haveNext = true
		}
	}

	var kept []layout.Line
	for _, line := range lines {
		if line.IsNextPage {
			if line.YPosition >= maxNextY-searchRange {
				kept = append(kept, line)
			}
			continue
		}
		if region.Contains(model.Point{X: line.XPosition, Y: line.YPosition}) {
			kept = append(kept, line)
		}
	}
	return kept
}

// horizontalFilter keeps lines starting within the x-tolerance of the
// anchor and, on multi-column pages, inside the anchor's column.
func (s *Scanner) horizontalFilter(lines []layout.Line, targetX, xTolerance float64, columns *layout.ColumnLayout) []layout.Line {
	targetColumn := columns.ColumnOf(targetX)

	var kept []layout.Line
	for _, line := range lines {
		if absFloat(line.XPosition-targetX) > xTolerance {
			continue
		}
		if columns.ColumnOf(line.XPosition) != targetColumn {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// orderCandidates sorts same-page lines by descending y and places
// next-page lines after all of them, themselves by descending y.
func orderCandidates(lines []layout.Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].IsNextPage != lines[j].IsNextPage {
			return !lines[i].IsNextPage
		}
		return lines[i].YPosition > lines[j].YPosition
	})
}

// scan walks the ordered candidates assembling the reference entry.
// A line re-matching the start pattern's own type opens the next entry
// and stops the scan; a section terminator stops it as well. A line
// matching a different pattern type is interior text (an embedded DOI
// inside a still-open entry, for example) and is appended.
func (s *Scanner) scan(candidates []layout.Line) Extraction {
	var (
		state     = stateSearching
		parts     []string
		method    model.Method
		linesUsed int
		usedNext  bool
	)

	for _, line := range candidates {
		if state == stateDone {
			break
		}
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		switch state {
		case stateSearching:
			if m, ok := MatchStart(trimmed); ok {
				state = stateAccumulating
				method = m
				parts = append(parts, trimmed)
				linesUsed++
				usedNext = usedNext || line.IsNextPage
			}

		case stateAccumulating:
			if MatchesMethod(trimmed, method) {
				state = stateDone // next entry of the same style begins
				continue
			}
			if IsSectionTerminator(trimmed) {
				state = stateDone
				continue
			}
			parts = append(parts, trimmed)
			linesUsed++
			usedNext = usedNext || line.IsNextPage
		}
	}

	if state == stateSearching {
		return s.fallback(candidates)
	}

	return Extraction{
		Text:       strings.Join(parts, " "),
		Method:     method,
		Confidence: s.config.PatternConfidence,
		LinesUsed:  linesUsed,
		SpansPages: usedNext,
	}
}

// fallback joins every candidate line in order as a lower-confidence
// proximity extraction when no start pattern matched.
func (s *Scanner) fallback(candidates []layout.Line) Extraction {
	var (
		parts    []string
		usedNext bool
	)
	for _, line := range candidates {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
		usedNext = usedNext || line.IsNextPage
	}
	if len(parts) == 0 {
		return Extraction{Method: model.MethodNone}
	}
	return Extraction{
		Text:       strings.Join(parts, " "),
		Method:     model.MethodProximity,
		Confidence: s.config.ProximityConfidence,
		LinesUsed:  len(parts),
		SpansPages: usedNext,
	}
}

// clamp01 clamps a confidence value to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// absFloat returns the absolute value of a float64.
func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
