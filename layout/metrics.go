package layout

import (
	"unicode/utf8"

	"github.com/docview/citelens/model"
)

// Metrics holds the adaptive thresholds derived from a page's own
// measured geometry. Fixed pixel thresholds fail across documents with
// different base font sizes and page sizes; deriving them from the
// page keeps the search radius proportionate. Computed once per page
// and read-only afterward.
type Metrics struct {
	// AverageLineHeight is the mean delta between consecutive line
	// baselines, restricted to the plausible band (0, MaxLineDelta].
	AverageLineHeight float64

	// AverageCharWidth is the mean per-character width over all
	// non-empty runs.
	AverageCharWidth float64

	// SearchRange is the vertical radius used when collecting
	// candidate lines around an anchor.
	SearchRange float64

	// XTolerance is the horizontal radius used to keep candidates in
	// the anchor's column.
	XTolerance float64
}

// MetricsConfig holds configuration for threshold derivation
type MetricsConfig struct {
	// MaxLineDelta is the upper bound of the plausible baseline-delta
	// band; larger deltas are column breaks or noise (default: 100)
	MaxLineDelta float64

	// DefaultLineHeight is used when no deltas qualify (default: 12)
	DefaultLineHeight float64

	// DefaultCharWidth is used when no runs carry text (default: 6)
	DefaultCharWidth float64

	// SearchRange = max(lineHeight*LineHeightFactor,
	// pageHeight*PageHeightFactor, MinSearchRange)
	LineHeightFactor float64
	PageHeightFactor float64
	MinSearchRange   float64

	// XTolerance = max(charWidth*CharWidthFactor,
	// pageWidth*PageWidthFactor, MinXTolerance)
	CharWidthFactor float64
	PageWidthFactor float64
	MinXTolerance   float64
}

// DefaultMetricsConfig returns sensible default configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MaxLineDelta:      100.0,
		DefaultLineHeight: 12.0,
		DefaultCharWidth:  6.0,
		LineHeightFactor:  10.0,
		PageHeightFactor:  0.12,
		MinSearchRange:    60.0,
		CharWidthFactor:   5.0,
		PageWidthFactor:   0.03,
		MinXTolerance:     20.0,
	}
}

// MetricsAnalyzer derives per-page adaptive thresholds
type MetricsAnalyzer struct {
	config MetricsConfig
}

// NewMetricsAnalyzer creates an analyzer with default configuration
func NewMetricsAnalyzer() *MetricsAnalyzer {
	return &MetricsAnalyzer{
		config: DefaultMetricsConfig(),
	}
}

// NewMetricsAnalyzerWithConfig creates an analyzer with custom configuration
func NewMetricsAnalyzerWithConfig(config MetricsConfig) *MetricsAnalyzer {
	return &MetricsAnalyzer{
		config: config,
	}
}

// Analyze derives the page's thresholds from its reconstructed lines
// and bounds.
func (a *MetricsAnalyzer) Analyze(lines []Line, bounds model.Bounds) Metrics {
	lineHeight := a.averageLineHeight(lines)
	charWidth := a.averageCharWidth(lines)

	return Metrics{
		AverageLineHeight: lineHeight,
		AverageCharWidth:  charWidth,
		SearchRange: max3(
			lineHeight*a.config.LineHeightFactor,
			bounds.Height*a.config.PageHeightFactor,
			a.config.MinSearchRange,
		),
		XTolerance: max3(
			charWidth*a.config.CharWidthFactor,
			bounds.Width*a.config.PageWidthFactor,
			a.config.MinXTolerance,
		),
	}
}

// averageLineHeight computes the mean consecutive-baseline delta,
// excluding deltas outside (0, MaxLineDelta] as column breaks or noise.
func (a *MetricsAnalyzer) averageLineHeight(lines []Line) float64 {
	total := 0.0
	count := 0
	for i := 1; i < len(lines); i++ {
		delta := lines[i-1].YPosition - lines[i].YPosition
		if delta > 0 && delta <= a.config.MaxLineDelta {
			total += delta
			count++
		}
	}
	if count == 0 {
		return a.config.DefaultLineHeight
	}
	return total / float64(count)
}

// averageCharWidth computes the mean width per character over all
// non-empty runs.
func (a *MetricsAnalyzer) averageCharWidth(lines []Line) float64 {
	total := 0.0
	count := 0
	for _, line := range lines {
		for _, run := range line.Items {
			n := utf8.RuneCountInString(run.Text)
			if n == 0 {
				continue
			}
			total += run.Width / float64(n)
			count++
		}
	}
	if count == 0 {
		return a.config.DefaultCharWidth
	}
	return total / float64(count)
}

// max3 returns the largest of three float64 values.
func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
