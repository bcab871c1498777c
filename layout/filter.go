package layout

import (
	"regexp"
	"sort"
	"strings"
)

// FilterConfig holds configuration for candidate line filtering
type FilterConfig struct {
	// FontMinShare and FontMaxShare bound the per-line usage share a
	// font must have to be a reference-font candidate. Body text is
	// typically above the upper bound, rare decorative fonts below the
	// lower one. (defaults: 0.10, 0.80)
	FontMinShare float64
	FontMaxShare float64

	// FontMinLines is the minimum number of lines a candidate font
	// must appear in (default: 3)
	FontMinLines int

	// XIQRFactor is the IQR multiplier for x-position bounds (default: 1.5)
	XIQRFactor float64

	// YIQRFactor is the IQR multiplier for y-position bounds
	// (default: 2.0, deliberately wider so legitimate references near
	// page edges survive)
	YIQRFactor float64

	// MinTextLength rejects lines with fewer trimmed characters
	// (default: 10)
	MinTextLength int
}

// DefaultFilterConfig returns sensible default configuration
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		FontMinShare:  0.10,
		FontMaxShare:  0.80,
		FontMinLines:  3,
		XIQRFactor:    1.5,
		YIQRFactor:    2.0,
		MinTextLength: 10,
	}
}

// Content-outlier patterns. Bare page numbers, captions, and section
// headings are never part of a reference entry. Single-level "1. "
// numbering is deliberately not treated as a heading here: numbered-dot
// reference entries start the same way.
var (
	pageNumberRe = regexp.MustCompile(`^\d{1,4}$`)
	captionRe    = regexp.MustCompile(`(?i)^(figure|fig\.|table|tab\.|equation|eq\.)\s*\d`)
	headingRe    = regexp.MustCompile(`^\d+(\.\d+)+\.?\s+\S`)
	allCapsRe    = regexp.MustCompile(`^[A-Z][A-Z\s\d.,:&-]+$`)
)

// LineFilter removes lines that cannot belong to a bibliography:
// wrong-font lines first, then statistical and content outliers. Both
// stages are idempotent given the same input.
type LineFilter struct {
	config FilterConfig
}

// NewLineFilter creates a filter with default configuration
func NewLineFilter() *LineFilter {
	return &LineFilter{
		config: DefaultFilterConfig(),
	}
}

// NewLineFilterWithConfig creates a filter with custom configuration
func NewLineFilterWithConfig(config FilterConfig) *LineFilter {
	return &LineFilter{
		config: config,
	}
}

// Filter applies font-based filtering followed by outlier rejection.
func (f *LineFilter) Filter(lines []Line) []Line {
	return f.RejectOutliers(f.FilterByFont(lines))
}

// FilterByFont keeps lines whose fonts intersect the reference-font
// candidate set.
func (f *LineFilter) FilterByFont(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}

	fontLineCount := make(map[string]int)
	for i := range lines {
		for font := range lines[i].Fonts {
			fontLineCount[font]++
		}
	}
	if len(fontLineCount) == 0 {
		return lines
	}

	total := float64(len(lines))
	candidates := make(map[string]struct{})
	for font, count := range fontLineCount {
		share := float64(count) / total
		if share >= f.config.FontMinShare && share <= f.config.FontMaxShare &&
			count >= f.config.FontMinLines {
			candidates[font] = struct{}{}
		}
	}

	// No font sits in the reference band: fall back to the two most
	// frequent fonts so filtering degrades rather than empties the page.
	if len(candidates) == 0 {
		for _, font := range topFonts(fontLineCount, 2) {
			candidates[font] = struct{}{}
		}
	}

	kept := make([]Line, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		if _, ok := candidates[line.DominantFont]; ok {
			kept = append(kept, *line)
			continue
		}
		for font := range candidates {
			if line.HasFont(font) {
				kept = append(kept, *line)
				break
			}
		}
	}
	return kept
}

// RejectOutliers drops lines whose position falls outside the IQR
// bounds or whose content matches a non-reference heuristic. The three
// checks are OR-combined: any one signal removes the line.
func (f *LineFilter) RejectOutliers(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}

	xs := make([]float64, len(lines))
	ys := make([]float64, len(lines))
	for i := range lines {
		xs[i] = lines[i].XPosition
		ys[i] = lines[i].YPosition
	}

	// IQR bounds are meaningless on a handful of lines; apply them
	// only when the sample is large enough to have real quartiles.
	useStats := len(lines) >= 4
	var xLow, xHigh, yLow, yHigh float64
	if useStats {
		xLow, xHigh = iqrBounds(xs, f.config.XIQRFactor)
		yLow, yHigh = iqrBounds(ys, f.config.YIQRFactor)
	}

	kept := make([]Line, 0, len(lines))
	for i := range lines {
		line := lines[i]
		if useStats && (line.XPosition < xLow || line.XPosition > xHigh) {
			continue
		}
		if useStats && (line.YPosition < yLow || line.YPosition > yHigh) {
			continue
		}
		if f.isContentOutlier(line.Text) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// isContentOutlier reports whether the line's text marks it as
// non-reference content.
func (f *LineFilter) isContentOutlier(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < f.config.MinTextLength {
		return true
	}
	if pageNumberRe.MatchString(trimmed) {
		return true
	}
	if captionRe.MatchString(trimmed) {
		return true
	}
	if headingRe.MatchString(trimmed) && len(trimmed) < 60 {
		return true
	}
	if allCapsRe.MatchString(trimmed) && len(trimmed) < 40 {
		return true
	}
	if fields := strings.Fields(trimmed); len(fields) == 1 && len(trimmed) < 15 {
		return true
	}
	return false
}

// iqrBounds returns (q1 - factor*iqr, q3 + factor*iqr) for the values.
func iqrBounds(values []float64, factor float64) (low, high float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - factor*iqr, q3 + factor*iqr
}

// percentile returns the value at fraction p of the sorted slice,
// interpolating between neighbors.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[lower+1]*frac
}

// topFonts returns the n most frequent fonts, most frequent first.
func topFonts(counts map[string]int, n int) []string {
	fonts := make([]string, 0, len(counts))
	for font := range counts {
		fonts = append(fonts, font)
	}
	sort.Slice(fonts, func(i, j int) bool {
		if counts[fonts[i]] != counts[fonts[j]] {
			return counts[fonts[i]] > counts[fonts[j]]
		}
		return fonts[i] < fonts[j]
	})
	if len(fonts) > n {
		fonts = fonts[:n]
	}
	return fonts
}
