package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docview/citelens/model"
)

// fakeSource is an in-memory DocumentSource for resolver tests.
type fakeSource struct {
	pages       [][]model.TextRun
	annotations map[int][]model.Annotation
	dests       map[string]*model.TargetLocation
	bounds      model.Bounds

	destErr error
	textErr map[int]error

	mu        sync.Mutex
	textCalls map[int]int
}

func newFakeSource(pageCount int) *fakeSource {
	return &fakeSource{
		pages:       make([][]model.TextRun, pageCount),
		annotations: make(map[int][]model.Annotation),
		dests:       make(map[string]*model.TargetLocation),
		bounds:      model.Bounds{Width: 612, Height: 792},
		textErr:     make(map[int]error),
		textCalls:   make(map[int]int),
	}
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) PageAnnotations(page int) ([]model.Annotation, error) {
	return f.annotations[page], nil
}

func (f *fakeSource) ResolveDestination(name string) (*model.TargetLocation, error) {
	if f.destErr != nil {
		return nil, f.destErr
	}
	return f.dests[name], nil
}

func (f *fakeSource) PageTextRuns(page int) ([]model.TextRun, error) {
	f.mu.Lock()
	f.textCalls[page]++
	f.mu.Unlock()

	if err := f.textErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeSource) PageBounds(page int) (model.Bounds, error) {
	return f.bounds, nil
}

// addLine places one single-run line of text on a page.
func (f *fakeSource) addLine(page int, text string, x, y float64) {
	f.pages[page] = append(f.pages[page], model.TextRun{
		Text:   text,
		X:      x,
		Y:      y,
		Width:  float64(len(text)) * 5,
		Height: 10,
		Font:   "F1",
	})
}

// addAnchor registers a citation link on sourcePage pointing at a
// location on targetPage.
func (f *fakeSource) addAnchor(name string, sourcePage, targetPage int, x, y float64) {
	f.annotations[sourcePage] = append(f.annotations[sourcePage], model.Annotation{
		Subtype: "Link",
		Dest:    name,
	})
	f.dests[name] = &model.TargetLocation{Page: targetPage, X: x, Y: y}
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

// referenceSource builds a two-page document: citations on page 0, a
// numbered bibliography on page 1.
func referenceSource() *fakeSource {
	f := newFakeSource(2)
	f.addLine(1, "[3] Adams, B. An earlier cited work. Journal, 2018.", 72, 314)
	f.addLine(1, "[4] Smith, J. A study of layout reconstruction", 72, 300)
	f.addLine(1, "in positioned text. Journal of Documents, 2020.", 72, 286)
	f.addLine(1, "[5] Jones, K. The next entry in the list. 2021.", 72, 272)
	f.addAnchor("cite.smith2020", 0, 1, 72, 300)
	return f
}

func TestResolver_NumberedCitation(t *testing.T) {
	f := referenceSource()
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if rec.CitationID != "cite.smith2020" {
		t.Errorf("CitationID = %q", rec.CitationID)
	}
	if rec.SourcePage != 0 || rec.TargetPage != 1 {
		t.Errorf("Pages = %d -> %d, want 0 -> 1", rec.SourcePage, rec.TargetPage)
	}
	if rec.Method != model.MethodNumbered {
		t.Errorf("Method = %v, want numbered", rec.Method)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("Confidence = %g, want 0.8", rec.Confidence)
	}
	want := "[4] Smith, J. A study of layout reconstruction in positioned text. Journal of Documents, 2020."
	if rec.ReferenceText != want {
		t.Errorf("ReferenceText = %q, want %q", rec.ReferenceText, want)
	}
	if rec.LinesUsed != 2 {
		t.Errorf("LinesUsed = %d, want 2", rec.LinesUsed)
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestResolver_IgnoresNonCitationAnnotations(t *testing.T) {
	f := referenceSource()
	// Neither a non-link annotation nor a link without the citation
	// prefix may produce a record.
	f.annotations[0] = append(f.annotations[0],
		model.Annotation{Subtype: "Highlight", Dest: "cite.other"},
		model.Annotation{Subtype: "Link", Dest: "section.2"},
		model.Annotation{Subtype: "Link", Dest: ""},
	)
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(result.Records))
	}
}

func TestResolver_UndefinedDestinationSkipped(t *testing.T) {
	f := referenceSource()
	f.annotations[0] = append(f.annotations[0], model.Annotation{
		Subtype: "Link",
		Dest:    "cite.missing",
	})
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// The broken anchor is skipped; the valid one still resolves.
	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	if result.Records[0].CitationID != "cite.smith2020" {
		t.Errorf("Wrong record survived: %q", result.Records[0].CitationID)
	}
}

func TestResolver_DestinationErrorSkipped(t *testing.T) {
	f := referenceSource()
	f.destErr = errors.New("corrupt name tree")
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve must not fail the run: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(result.Records))
	}
	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", result.Summary.Total)
	}
}

func TestResolver_PageWithoutTextYieldsSentinel(t *testing.T) {
	f := referenceSource()
	f.textErr[1] = errors.New("content stream decode failure")
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if rec.ReferenceText != model.NoTextFound {
		t.Errorf("ReferenceText = %q, want sentinel", rec.ReferenceText)
	}
	if rec.Method != model.MethodNone {
		t.Errorf("Method = %v, want none", rec.Method)
	}
	if rec.Confidence != 0 {
		t.Errorf("Confidence = %g, want 0", rec.Confidence)
	}
}

func TestResolver_OnlyArtifactsInRangeYieldsSentinel(t *testing.T) {
	f := newFakeSource(2)
	// The target region holds nothing but a page number and a figure
	// caption. The content filter rejects both, so no candidate line
	// survives and the record degrades to the sentinel.
	f.addLine(1, "12", 300, 300)
	f.addLine(1, "Figure 3: Distribution of results", 120, 286)
	f.addAnchor("cite.ghost", 0, 1, 72, 300)
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Method != model.MethodNone {
		t.Errorf("Method = %v, want none", rec.Method)
	}
	if rec.Confidence != 0 {
		t.Errorf("Confidence = %g, want 0", rec.Confidence)
	}
	if rec.ReferenceText != model.NoTextFound {
		t.Errorf("ReferenceText = %q, want sentinel", rec.ReferenceText)
	}
}

func TestResolver_MultiPageSpan(t *testing.T) {
	f := newFakeSource(3)
	// Entry starts near the bottom edge of page 1 and continues at the
	// top of page 2.
	f.addLine(1, "[9] Smith, J. An entry that runs off the page", 72, 60)
	f.addLine(2, "bottom and continues on the following page. 2020.", 72, 700)
	f.addAnchor("cite.smith2020", 0, 1, 72, 60)
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if !rec.SpansPages {
		t.Fatal("Expected SpansPages")
	}
	if !strings.Contains(rec.ReferenceText, "continues on the following page") {
		t.Errorf("Continuation missing: %q", rec.ReferenceText)
	}
	if rec.Confidence != 0.9 {
		t.Errorf("Confidence = %g, want 0.9", rec.Confidence)
	}
}

func TestResolver_SpanNotTriggeredAwayFromEdge(t *testing.T) {
	f := newFakeSource(3)
	f.addLine(1, "[9] Smith, J. A complete entry on one page. 2020.", 72, 300)
	f.addLine(2, "unrelated top-of-next-page content line here", 72, 700)
	f.addAnchor("cite.smith2020", 0, 1, 72, 300)
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	rec := result.Records[0]
	if rec.SpansPages {
		t.Error("Span handling must not trigger away from the bottom edge")
	}
	if strings.Contains(rec.ReferenceText, "unrelated") {
		t.Errorf("Next-page content leaked: %q", rec.ReferenceText)
	}
}

func TestResolver_DeterministicOrder(t *testing.T) {
	f := newFakeSource(2)
	y := 700.0
	for i := 0; i < 8; i++ {
		f.addLine(1, fmt.Sprintf("[%d] Author, A. Cited work number %d. 2020.", i+1, i+1), 72, y)
		y -= 14
	}
	for i := 0; i < 8; i++ {
		f.addAnchor(fmt.Sprintf("cite.ref%d", i+1), 0, 1, 72, 700-float64(i)*14)
	}
	cfg := quietConfig()
	cfg.Concurrency = 4
	r := NewWithConfig(f, cfg)

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(result.Records) != 8 {
		t.Fatalf("Expected 8 records, got %d", len(result.Records))
	}
	for i, rec := range result.Records {
		want := fmt.Sprintf("cite.ref%d", i+1)
		if rec.CitationID != want {
			t.Errorf("Record %d = %q, want %q", i, rec.CitationID, want)
		}
	}
}

func TestResolver_PageAnalyzedOnce(t *testing.T) {
	f := newFakeSource(2)
	y := 700.0
	for i := 0; i < 8; i++ {
		f.addLine(1, fmt.Sprintf("[%d] Author, A. Cited work number %d. 2020.", i+1, i+1), 72, y)
		y -= 14
	}
	for i := 0; i < 8; i++ {
		f.addAnchor(fmt.Sprintf("cite.ref%d", i+1), 0, 1, 72, 700-float64(i)*14)
	}
	cfg := quietConfig()
	cfg.Concurrency = 8
	r := NewWithConfig(f, cfg)

	if _, err := r.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	f.mu.Lock()
	calls := f.textCalls[1]
	f.mu.Unlock()
	if calls != 1 {
		t.Errorf("Page 1 text fetched %d times, want 1", calls)
	}
}

func TestResolver_CancelledContextReturnsPartial(t *testing.T) {
	f := referenceSource()
	r := NewWithConfig(f, quietConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Resolve(ctx)
	if err != nil {
		t.Fatalf("Cancellation must not be an error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected a result with partial records")
	}
	if len(result.Records) != 0 {
		t.Errorf("Expected 0 records after pre-cancelled context, got %d", len(result.Records))
	}
	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", result.Summary.Total)
	}
}

func TestResolver_Deterministic(t *testing.T) {
	resolveOnce := func() []model.ExtractionRecord {
		r := NewWithConfig(referenceSource(), quietConfig())
		result, err := r.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		records := result.Records
		for i := range records {
			records[i].Timestamp = time.Time{}
		}
		return records
	}

	first := resolveOnce()
	second := resolveOnce()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Runs diverged:\n%+v\n%+v", first, second)
	}
}

func TestResolver_Summary(t *testing.T) {
	f := newFakeSource(2)
	y := 700.0
	for i := 0; i < 4; i++ {
		f.addLine(1, fmt.Sprintf("[%d] Author, A. Cited work number %d. 2020.", i+1, i+1), 72, y)
		y -= 14
	}
	for i := 0; i < 4; i++ {
		f.addAnchor(fmt.Sprintf("cite.ref%d", i+1), 0, 1, 72, 700-float64(i)*14)
	}
	r := NewWithConfig(f, quietConfig())

	result, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	sum := result.Summary
	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4", sum.Total)
	}
	if sum.ByMethod[model.MethodNumbered] != 4 {
		t.Errorf("ByMethod[numbered] = %d, want 4", sum.ByMethod[model.MethodNumbered])
	}
	if sum.HighConfidence != 4 {
		t.Errorf("HighConfidence = %d, want 4", sum.HighConfidence)
	}
	if sum.LowConfidence != 0 {
		t.Errorf("LowConfidence = %d, want 0", sum.LowConfidence)
	}
}
