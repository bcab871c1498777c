package model

// Annotation is a page-level annotation as reported by the document
// source. Only link annotations with a named destination are relevant
// to citation resolution; everything else is carried through untouched
// so callers can apply their own filtering.
type Annotation struct {
	// Subtype is the annotation subtype, e.g. "Link".
	Subtype string

	// Dest is the named destination the annotation points to, empty
	// when the annotation has no resolvable name.
	Dest string
}

// TargetLocation is a resolved destination: a page index and a point
// on that page.
type TargetLocation struct {
	Page int
	X, Y float64
}

// DocumentSource is the engine's view of an already loaded document.
// Implementations supply positioned text runs and internal link
// metadata; the engine never touches the underlying file format.
//
// Page indices are zero-based throughout.
type DocumentSource interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageAnnotations returns the annotations present on a page.
	PageAnnotations(pageIndex int) ([]Annotation, error)

	// ResolveDestination resolves a named destination to a location.
	// A nil location with a nil error means the name is not defined
	// in the document.
	ResolveDestination(name string) (*TargetLocation, error)

	// PageTextRuns returns the positioned text runs of a page. A page
	// with no extractable text returns an empty slice, not an error.
	PageTextRuns(pageIndex int) ([]TextRun, error)

	// PageBounds returns the page's media box dimensions.
	PageBounds(pageIndex int) (Bounds, error)
}
