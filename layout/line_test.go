package layout

import (
	"testing"

	"github.com/docview/citelens/model"
)

// makeRun creates a test text run for layout tests
func makeRun(text string, x, y, width float64, font string) model.TextRun {
	return model.TextRun{
		Text:   text,
		X:      x,
		Y:      y,
		Width:  width,
		Height: 10,
		Font:   font,
	}
}

func TestReconstructor_EmptyRuns(t *testing.T) {
	r := NewReconstructor()

	if lines := r.Reconstruct(nil, 0); lines != nil {
		t.Errorf("Expected nil lines for empty input, got %d", len(lines))
	}
}

func TestReconstructor_SingleRun(t *testing.T) {
	r := NewReconstructor()
	runs := []model.TextRun{
		makeRun("Hello", 100, 700, 30, "F1"),
	}

	lines := r.Reconstruct(runs, 3)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line.Text != "Hello" {
		t.Errorf("Expected 'Hello', got '%s'", line.Text)
	}
	if line.YPosition != 700 || line.XPosition != 100 {
		t.Errorf("Expected position (100, 700), got (%g, %g)", line.XPosition, line.YPosition)
	}
	if line.PageNumber != 3 {
		t.Errorf("Expected page 3, got %d", line.PageNumber)
	}
	if line.DominantFont != "F1" {
		t.Errorf("Expected dominant font F1, got %s", line.DominantFont)
	}
}

func TestReconstructor_GroupsWithinTolerance(t *testing.T) {
	r := NewReconstructor()
	// Baselines 700, 701.5, 698.5 all sit within the default tolerance
	// of the line opened at y=700.
	runs := []model.TextRun{
		makeRun("sub-unit", 140, 701.5, 45, "F1"),
		makeRun("noise", 190, 698.5, 30, "F1"),
		makeRun("Baseline", 80, 700, 55, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Baseline sub-unit noise" {
		t.Errorf("Expected 'Baseline sub-unit noise', got '%s'", lines[0].Text)
	}
}

func TestReconstructor_SplitsBeyondTolerance(t *testing.T) {
	r := NewReconstructor()
	runs := []model.TextRun{
		makeRun("Second line", 72, 688, 60, "F1"),
		makeRun("First line", 72, 700, 55, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	// Higher y first (top of the page).
	if lines[0].Text != "First line" {
		t.Errorf("Expected 'First line' first, got '%s'", lines[0].Text)
	}
	if lines[1].Text != "Second line" {
		t.Errorf("Expected 'Second line' second, got '%s'", lines[1].Text)
	}
}

func TestReconstructor_OrderIndependentOfInputPermutation(t *testing.T) {
	r := NewReconstructor()
	// Baselines 704/702/700 chain pairwise within the default tolerance;
	// every input order must yield the same lines, top of page first.
	base := []model.TextRun{
		makeRun("alpha", 72, 704, 30, "F1"),
		makeRun("beta", 110, 702, 28, "F1"),
		makeRun("gamma", 72, 700, 32, "F1"),
	}
	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	var want []string
	for _, p := range perms {
		runs := []model.TextRun{base[p[0]], base[p[1]], base[p[2]]}
		lines := r.Reconstruct(runs, 0)

		got := make([]string, len(lines))
		for i := range lines {
			got[i] = lines[i].Text
			if i > 0 && lines[i].YPosition >= lines[i-1].YPosition {
				t.Errorf("Permutation %v: line order not descending: %g after %g",
					p, lines[i].YPosition, lines[i-1].YPosition)
			}
		}
		if want == nil {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Fatalf("Permutation %v: %d lines, want %d", p, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Permutation %v: line %d = %q, want %q", p, i, got[i], want[i])
			}
		}
	}
}

func TestReconstructor_XGapSplitsColumnMates(t *testing.T) {
	r := NewReconstructor()
	// Two column-mates share a baseline but sit 200 units apart.
	runs := []model.TextRun{
		makeRun("Left column text", 72, 400, 90, "F1"),
		makeRun("Right column text", 330, 400, 95, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines for column-mates, got %d", len(lines))
	}
	if lines[0].Text != "Left column text" || lines[1].Text != "Right column text" {
		t.Errorf("Columns split incorrectly: %q / %q", lines[0].Text, lines[1].Text)
	}
}

func TestReconstructor_SmallGapStaysOneLine(t *testing.T) {
	r := NewReconstructor()
	runs := []model.TextRun{
		makeRun("Hello", 100, 700, 40, "F1"),
		makeRun("world", 145, 700, 40, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("Expected 'Hello world', got '%s'", lines[0].Text)
	}
}

func TestReconstructor_GlyphRunsJoinWithoutSpaces(t *testing.T) {
	r := NewReconstructor()
	// Per-glyph runs abut each other; no word gaps should be inserted.
	runs := []model.TextRun{
		makeRun("H", 100, 700, 7, "F1"),
		makeRun("i", 107, 700, 3, "F1"),
		makeRun("!", 110, 700, 3, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Hi!" {
		t.Errorf("Expected 'Hi!', got '%s'", lines[0].Text)
	}
}

func TestReconstructor_ItemsSortedLeftToRight(t *testing.T) {
	r := NewReconstructor()
	runs := []model.TextRun{
		makeRun("world", 145, 700, 40, "F1"),
		makeRun("Hello", 100, 700, 40, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	items := lines[0].Items
	for i := 1; i < len(items); i++ {
		if items[i].X < items[i-1].X {
			t.Errorf("Items not sorted by x: %g before %g", items[i-1].X, items[i].X)
		}
	}
	if lines[0].XPosition != 100 {
		t.Errorf("Expected XPosition 100, got %g", lines[0].XPosition)
	}
}

func TestReconstructor_DominantFont(t *testing.T) {
	r := NewReconstructor()
	runs := []model.TextRun{
		makeRun("one", 100, 700, 20, "Times"),
		makeRun("two", 125, 700, 20, "Times"),
		makeRun("x", 150, 700, 5, "Symbol"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].DominantFont != "Times" {
		t.Errorf("Expected dominant font Times, got %s", lines[0].DominantFont)
	}
	if !lines[0].HasFont("Symbol") {
		t.Error("Expected line to record Symbol in its font set")
	}
}

func TestReconstructor_CustomConfig(t *testing.T) {
	r := NewReconstructorWithConfig(LineConfig{YTolerance: 5, XGapThreshold: 20})
	runs := []model.TextRun{
		makeRun("close", 100, 700, 30, "F1"),
		makeRun("enough", 135, 696, 40, "F1"),
	}

	lines := r.Reconstruct(runs, 0)

	if len(lines) != 1 {
		t.Errorf("Expected 1 line with widened tolerance, got %d", len(lines))
	}
}

func TestLine_Width(t *testing.T) {
	line := Line{
		XPosition: 100,
		Items: []model.TextRun{
			makeRun("Hello", 100, 700, 40, "F1"),
			makeRun("world", 145, 700, 40, "F1"),
		},
	}

	if got := line.Width(); got != 85 {
		t.Errorf("Expected width 85, got %g", got)
	}

	empty := Line{}
	if got := empty.Width(); got != 0 {
		t.Errorf("Expected zero width for empty line, got %g", got)
	}
}
