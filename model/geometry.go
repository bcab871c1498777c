package model

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox represents a bounding box (rectangle)
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom (PDF coordinate system)
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y + b.Height
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// IsValid returns true if the bounding box has positive dimensions
func (b BBox) IsValid() bool {
	return b.Width > 0 && b.Height > 0
}
