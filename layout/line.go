package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/docview/citelens/model"
)

// Line represents a reconstructed row of text inferred from the
// y-proximity of text runs. Items are sorted left to right and every
// item's y lies within the reconstructor's tolerance of YPosition.
type Line struct {
	// YPosition is the representative baseline of the line (the first
	// run that opened it). The span handler shifts this into negative
	// space for lines pulled from a following page.
	YPosition float64

	// XPosition is the leftmost item's X coordinate.
	XPosition float64

	// Items are the text runs that make up this line (sorted left to right)
	Items []model.TextRun

	// Text is the space-joined text content of the line
	Text string

	// Fonts is the set of font identifiers appearing in the line
	Fonts map[string]struct{}

	// DominantFont is the most frequent font among the line's items
	DominantFont string

	// PageNumber is the zero-based page the line was reconstructed from
	PageNumber int

	// IsNextPage marks lines pulled from the page after the anchor's
	// target page during multi-page span handling
	IsNextPage bool
}

// Width returns the horizontal extent of the line.
func (l *Line) Width() float64 {
	if len(l.Items) == 0 {
		return 0
	}
	last := l.Items[len(l.Items)-1]
	return last.Right() - l.XPosition
}

// HasFont reports whether the line uses the given font.
func (l *Line) HasFont(font string) bool {
	_, ok := l.Fonts[font]
	return ok
}

// LineConfig holds configuration for line reconstruction
type LineConfig struct {
	// YTolerance is the maximum baseline distance for a run to join
	// the current line (default: 2 units)
	YTolerance float64

	// XGapThreshold is the horizontal gap that closes a line even when
	// the y-band matches, splitting column-mates that share a baseline
	// (default: 20 units)
	XGapThreshold float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		YTolerance:    2.0,
		XGapThreshold: 20.0,
	}
}

// Reconstructor groups positioned text runs into lines
type Reconstructor struct {
	config LineConfig
}

// NewReconstructor creates a reconstructor with default configuration
func NewReconstructor() *Reconstructor {
	return &Reconstructor{
		config: DefaultLineConfig(),
	}
}

// NewReconstructorWithConfig creates a reconstructor with custom configuration
func NewReconstructorWithConfig(config LineConfig) *Reconstructor {
	return &Reconstructor{
		config: config,
	}
}

// Reconstruct groups the page's runs into lines sorted top of page
// first. An empty run list produces an empty line list, never an error.
func (r *Reconstructor) Reconstruct(runs []model.TextRun, pageNumber int) []Line {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]model.TextRun, len(runs))
	copy(sorted, runs)

	// Descending y, left to right within a y-band. Quantizing baselines
	// into tolerance-sized bands keeps runs that share a visual baseline
	// adjacent and gives the sort a strict weak ordering, so the emitted
	// line order does not depend on the input permutation.
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := r.yBand(sorted[i].Y), r.yBand(sorted[j].Y)
		if bi != bj {
			return bi > bj // higher on the page first
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	var current []model.TextRun

	for _, run := range sorted {
		if len(current) == 0 {
			current = append(current, run)
			continue
		}

		sameBand := absFloat(run.Y-current[0].Y) <= r.config.YTolerance
		if sameBand {
			// A wide horizontal jump inside a shared y-band means a
			// column boundary, not a continuation of the same line.
			prev := current[len(current)-1]
			if run.X-prev.Right() > r.config.XGapThreshold {
				lines = append(lines, r.buildLine(current, pageNumber))
				current = []model.TextRun{run}
				continue
			}
			current = append(current, run)
			continue
		}

		lines = append(lines, r.buildLine(current, pageNumber))
		current = []model.TextRun{run}
	}

	if len(current) > 0 {
		lines = append(lines, r.buildLine(current, pageNumber))
	}

	return lines
}

// buildLine assembles a Line from a run group. The group arrives in
// left-to-right order from the scan.
func (r *Reconstructor) buildLine(runs []model.TextRun, pageNumber int) Line {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].X < runs[j].X
	})

	line := Line{
		YPosition:  runs[0].Y,
		XPosition:  runs[0].X,
		Items:      runs,
		Fonts:      make(map[string]struct{}),
		PageNumber: pageNumber,
	}

	var sb strings.Builder
	fontCounts := make(map[string]int)
	for i, run := range runs {
		if i > 0 {
			// Sources may emit word- or glyph-sized runs; only a real
			// horizontal gap means a word boundary.
			prev := runs[i-1]
			if run.X-prev.Right() > wordGap(run) {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(run.Text)

		if run.Font != "" {
			line.Fonts[run.Font] = struct{}{}
			fontCounts[run.Font]++
		}
	}
	line.Text = sb.String()
	line.DominantFont = dominantFont(runs, fontCounts)

	return line
}

// yBand quantizes a baseline into tolerance-sized buckets, making the
// band comparison transitive. The grouping scan still merges runs from
// adjacent bands when they fall within tolerance of the line opener.
func (r *Reconstructor) yBand(y float64) float64 {
	if r.config.YTolerance <= 0 {
		return y
	}
	return math.Floor(y / r.config.YTolerance)
}

// wordGap is the horizontal distance that separates words, scaled to
// the run's text height.
func wordGap(run model.TextRun) float64 {
	if run.Height > 0 {
		return run.Height * 0.1
	}
	return 1.0
}

// dominantFont picks the most frequent font among the runs, breaking
// ties in favor of the leftmost occurrence.
func dominantFont(runs []model.TextRun, counts map[string]int) string {
	best := ""
	bestCount := 0
	for _, run := range runs {
		if run.Font == "" {
			continue
		}
		if counts[run.Font] > bestCount {
			best = run.Font
			bestCount = counts[run.Font]
		}
	}
	return best
}

// absFloat returns the absolute value of a float64.
func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
