package pdfdoc

import (
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/docview/citelens/model"
)

// Document adapts a PDF file to the engine's DocumentSource interface
// using the ledongthuc/pdf reader. All access to the underlying reader
// is serialized: the reader parses object streams on demand and is not
// safe for concurrent use.
type Document struct {
	file   *os.File
	reader *pdf.Reader

	mu sync.Mutex

	// pageKeys caches each page dictionary's serialized form, used to
	// map destination page objects back to page indices.
	pageKeys []string
}

// Open opens a PDF file as a document source. The returned Document
// must be closed when done.
func Open(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &Document{
		file:     file,
		reader:   reader,
		pageKeys: make([]string, reader.NumPage()),
	}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reader.NumPage()
}

// PageTextRuns returns the positioned text runs of a page. Pages that
// fail to parse yield an empty slice: a scanned or malformed page is
// not an error, it simply has no extractable text.
func (d *Document) PageTextRuns(pageIndex int) ([]model.TextRun, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pageIndex < 0 || pageIndex >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range", pageIndex)
	}
	page := d.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	runs := make([]model.TextRun, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		runs = append(runs, model.TextRun{
			Text:   t.S,
			X:      t.X,
			Y:      t.Y,
			Width:  t.W,
			Height: t.FontSize,
			Font:   t.Font,
		})
	}
	return runs, nil
}

// PageBounds returns the page's media box dimensions, honoring
// attribute inheritance through the page tree.
func (d *Document) PageBounds(pageIndex int) (model.Bounds, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pageIndex < 0 || pageIndex >= d.reader.NumPage() {
		return model.Bounds{}, fmt.Errorf("page %d out of range", pageIndex)
	}
	page := d.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return model.Bounds{}, fmt.Errorf("page %d is missing", pageIndex)
	}

	mediaBox := inheritedAttr(page.V, "MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() < 4 {
		return model.Bounds{}, fmt.Errorf("page %d has no media box", pageIndex)
	}

	x0 := mediaBox.Index(0).Float64()
	y0 := mediaBox.Index(1).Float64()
	x1 := mediaBox.Index(2).Float64()
	y1 := mediaBox.Index(3).Float64()
	box := model.NewBBox(x0, y0, x1-x0, y1-y0)
	if !box.IsValid() {
		return model.Bounds{}, fmt.Errorf("page %d has a degenerate media box", pageIndex)
	}
	return box, nil
}

// PageAnnotations returns the page's annotations with their subtype
// and named destination, when one exists. Explicit coordinate
// destinations have no name and are reported with an empty Dest.
func (d *Document) PageAnnotations(pageIndex int) ([]model.Annotation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pageIndex < 0 || pageIndex >= d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range", pageIndex)
	}
	page := d.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return nil, nil
	}

	annots := page.V.Key("Annots")
	if annots.IsNull() {
		return nil, nil
	}

	out := make([]model.Annotation, 0, annots.Len())
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.IsNull() {
			continue
		}
		out = append(out, model.Annotation{
			Subtype: a.Key("Subtype").Name(),
			Dest:    annotationDestName(a),
		})
	}
	return out, nil
}

// inheritedAttr looks up a page attribute, walking Parent links when
// the page itself does not define it.
func inheritedAttr(page pdf.Value, key string) pdf.Value {
	for v := page; !v.IsNull(); v = v.Key("Parent") {
		if attr := v.Key(key); !attr.IsNull() {
			return attr
		}
	}
	return pdf.Value{}
}

// annotationDestName extracts the named destination of a link
// annotation, from either the Dest entry or a GoTo action.
func annotationDestName(annot pdf.Value) string {
	if dest := annot.Key("Dest"); !dest.IsNull() {
		return destinationName(dest)
	}
	action := annot.Key("A")
	if action.IsNull() || action.Key("S").Name() != "GoTo" {
		return ""
	}
	return destinationName(action.Key("D"))
}

// destinationName returns the name carried by a destination value.
// Array-form destinations are explicit coordinates without a name.
func destinationName(dest pdf.Value) string {
	switch dest.Kind() {
	case pdf.Name:
		return dest.Name()
	case pdf.String:
		return dest.Text()
	default:
		return ""
	}
}
