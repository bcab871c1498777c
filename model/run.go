package model

// TextRun is a positioned piece of text as supplied by the document
// source. X and Y locate the baseline origin of the run; Y increases
// toward the top of the page. Runs are immutable once produced.
type TextRun struct {
	Text   string
	X, Y   float64
	Width  float64
	Height float64
	Font   string
}

// Right returns the X coordinate of the run's right edge.
func (r TextRun) Right() float64 {
	return r.X + r.Width
}

// Bounds describes a page's media box. Media boxes may carry a
// nonzero origin, so the full rectangle is kept rather than bare
// dimensions.
type Bounds = BBox
