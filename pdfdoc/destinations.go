package pdfdoc

import (
	"github.com/ledongthuc/pdf"

	"github.com/docview/citelens/model"
)

// ResolveDestination resolves a named destination to a page index and
// a point on that page. A nil location with a nil error means the name
// is not defined in the document.
func (d *Document) ResolveDestination(name string) (*model.TargetLocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	root := d.reader.Trailer().Key("Root")
	if root.IsNull() {
		return nil, nil
	}

	dest := lookupDestination(root, name)
	if dest.IsNull() {
		return nil, nil
	}

	// A destination dictionary wraps the actual array in its D entry.
	if dest.Kind() == pdf.Dict {
		dest = dest.Key("D")
	}
	if dest.Kind() != pdf.Array || dest.Len() < 2 {
		return nil, nil
	}

	pageIndex := d.pageIndexOf(dest.Index(0))
	if pageIndex < 0 {
		return nil, nil
	}

	x, y := destinationPoint(dest)
	return &model.TargetLocation{Page: pageIndex, X: x, Y: y}, nil
}

// lookupDestination finds a named destination in the catalog, checking
// the PDF 1.1 Dests dictionary first and the Names/Dests name tree
// second.
func lookupDestination(root pdf.Value, name string) pdf.Value {
	if dests := root.Key("Dests"); dests.Kind() == pdf.Dict {
		if v := dests.Key(name); !v.IsNull() {
			return v
		}
	}
	tree := root.Key("Names").Key("Dests")
	if tree.IsNull() {
		return pdf.Value{}
	}
	return searchNameTree(tree, name)
}

// searchNameTree walks a name tree node. Leaf nodes carry a Names
// array of alternating keys and values; interior nodes carry Kids.
func searchNameTree(node pdf.Value, name string) pdf.Value {
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		if names.Index(i).Text() == name {
			return names.Index(i + 1)
		}
	}

	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		kid := kids.Index(i)
		if !withinLimits(kid, name) {
			continue
		}
		if v := searchNameTree(kid, name); !v.IsNull() {
			return v
		}
	}
	return pdf.Value{}
}

// withinLimits prunes name-tree branches whose Limits exclude the
// name. Nodes without Limits are always searched.
func withinLimits(node pdf.Value, name string) bool {
	limits := node.Key("Limits")
	if limits.Len() < 2 {
		return true
	}
	return name >= limits.Index(0).Text() && name <= limits.Index(1).Text()
}

// destinationPoint extracts the target coordinates from a destination
// array [page /XYZ left top zoom]. Fit variants that omit a
// coordinate report zero for it.
func destinationPoint(dest pdf.Value) (x, y float64) {
	switch dest.Index(1).Name() {
	case "XYZ":
		return numberAt(dest, 2), numberAt(dest, 3)
	case "FitH", "FitBH":
		return 0, numberAt(dest, 2)
	case "FitV", "FitBV":
		return numberAt(dest, 2), 0
	default:
		return 0, 0
	}
}

// numberAt reads a numeric array element, treating null (a permitted
// placeholder in destination arrays) as zero.
func numberAt(arr pdf.Value, i int) float64 {
	if i >= arr.Len() {
		return 0
	}
	v := arr.Index(i)
	if v.IsNull() {
		return 0
	}
	return v.Float64()
}

// pageIndexOf maps a destination's page object back to its zero-based
// index by comparing serialized page dictionaries. Serializations are
// cached per page for the life of the document.
func (d *Document) pageIndexOf(page pdf.Value) int {
	if page.IsNull() {
		return -1
	}
	key := page.String()
	for i := 0; i < d.reader.NumPage(); i++ {
		if d.pageKeys[i] == "" {
			v := d.reader.Page(i + 1).V
			if v.IsNull() {
				continue
			}
			d.pageKeys[i] = v.String()
		}
		if d.pageKeys[i] == key {
			return i
		}
	}
	return -1
}
