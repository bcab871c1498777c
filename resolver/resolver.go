package resolver

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/docview/citelens/layout"
	"github.com/docview/citelens/model"
	"github.com/docview/citelens/refs"
)

// CitePrefix is the reserved destination-name prefix that marks a link
// annotation as an inline citation anchor.
const CitePrefix = "cite."

// CitationAnchor is one internal link annotation selected for
// resolution.
type CitationAnchor struct {
	DestinationName string
	SourcePage      int
}

// Config holds configuration for a document run
type Config struct {
	// Concurrency bounds the number of anchors processed in parallel
	// (default: 4)
	Concurrency int

	// RateLimit caps anchor dispatches per second against the text
	// backend; zero means unlimited
	RateLimit float64

	// SpanEdgeDistance is how close to the page's bottom edge the
	// target must sit to trigger next-page span handling (default: 100)
	SpanEdgeDistance float64

	// Stage configurations
	Line    layout.LineConfig
	Metrics layout.MetricsConfig
	Columns layout.ColumnConfig
	Filter  layout.FilterConfig
	Scan    refs.ScanConfig

	// Logger receives per-anchor diagnostics; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Concurrency:      4,
		SpanEdgeDistance: 100.0,
		Line:             layout.DefaultLineConfig(),
		Metrics:          layout.DefaultMetricsConfig(),
		Columns:          layout.DefaultColumnConfig(),
		Filter:           layout.DefaultFilterConfig(),
		Scan:             refs.DefaultScanConfig(),
	}
}

// Result is the output of one document run.
type Result struct {
	Records []model.ExtractionRecord `json:"records"`
	Summary model.ExtractionSummary  `json:"summary"`
}

// Resolver drives the citation resolution pipeline for one document.
// A Resolver memoizes per-page analysis for the duration of the run;
// create a new one per document.
type Resolver struct {
	source  model.DocumentSource
	config  Config
	logger  *slog.Logger
	limiter *rate.Limiter

	reconstructor *layout.Reconstructor
	metrics       *layout.MetricsAnalyzer
	columns       *layout.ColumnDetector
	filter        *layout.LineFilter
	scanner       *refs.Scanner

	mu    sync.Mutex
	pages map[int]*pageEntry
}

// New creates a resolver with default configuration.
func New(source model.DocumentSource) *Resolver {
	return NewWithConfig(source, DefaultConfig())
}

// NewWithConfig creates a resolver with custom configuration.
func NewWithConfig(source model.DocumentSource, config Config) *Resolver {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return &Resolver{
		source:        source,
		config:        config,
		logger:        logger,
		limiter:       limiter,
		reconstructor: layout.NewReconstructorWithConfig(config.Line),
		metrics:       layout.NewMetricsAnalyzerWithConfig(config.Metrics),
		columns:       layout.NewColumnDetectorWithConfig(config.Columns),
		filter:        layout.NewLineFilterWithConfig(config.Filter),
		scanner:       refs.NewScannerWithConfig(config.Scan),
		pages:         make(map[int]*pageEntry),
	}
}

// Resolve processes every citation anchor in the document and returns
// the record set with its summary. No per-anchor condition is fatal:
// unresolvable destinations are skipped, pages without text degrade to
// "(no text found)" records, and cancellation returns the records
// completed so far.
func (r *Resolver) Resolve(ctx context.Context) (*Result, error) {
	anchors := r.collectAnchors()
	r.logger.Debug("collected citation anchors", "count", len(anchors))

	// One slot per anchor keeps output order deterministic (by page,
	// then annotation order) regardless of worker scheduling.
	slots := make([]*model.ExtractionRecord, len(anchors))

	sem := make(chan struct{}, r.config.Concurrency)
	var wg sync.WaitGroup

	for i, anchor := range anchors {
		if ctx.Err() != nil {
			r.logger.Info("resolution cancelled, returning partial results",
				"dispatched", i, "total", len(anchors))
			break
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				r.logger.Info("resolution cancelled, returning partial results",
					"dispatched", i, "total", len(anchors))
				break
			}
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(slot int, anchor CitationAnchor) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[slot] = r.processAnchor(anchor)
		}(i, anchor)
	}
	wg.Wait()

	records := make([]model.ExtractionRecord, 0, len(anchors))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	summary := model.Summarize(records)
	r.logger.Info("resolution complete",
		"records", summary.Total,
		"mean_confidence", summary.MeanConfidence,
		"high_confidence", summary.HighConfidence,
		"low_confidence", summary.LowConfidence)

	return &Result{Records: records, Summary: summary}, nil
}

// collectAnchors walks every page's annotations and keeps link
// annotations whose destination carries the citation prefix.
func (r *Resolver) collectAnchors() []CitationAnchor {
	var anchors []CitationAnchor
	for page := 0; page < r.source.PageCount(); page++ {
		annotations, err := r.source.PageAnnotations(page)
		if err != nil {
			r.logger.Warn("failed to read page annotations", "page", page, "error", err)
			continue
		}
		for _, a := range annotations {
			if a.Subtype != "Link" {
				continue
			}
			if !strings.HasPrefix(a.Dest, CitePrefix) {
				continue
			}
			anchors = append(anchors, CitationAnchor{
				DestinationName: a.Dest,
				SourcePage:      page,
			})
		}
	}
	return anchors
}

// processAnchor resolves one anchor to an extraction record. A nil
// return means the anchor was skipped (broken destination); every
// other failure mode degrades to a lower-confidence or empty record.
func (r *Resolver) processAnchor(anchor CitationAnchor) *model.ExtractionRecord {
	loc, err := r.source.ResolveDestination(anchor.DestinationName)
	if err != nil {
		r.logger.Warn("destination resolution failed, skipping anchor",
			"dest", anchor.DestinationName, "page", anchor.SourcePage, "error", err)
		return nil
	}
	if loc == nil {
		r.logger.Warn("destination not defined, skipping anchor",
			"dest", anchor.DestinationName, "page", anchor.SourcePage)
		return nil
	}

	analysis := r.pageAnalysis(loc.Page)
	candidates := r.spanCandidates(loc, analysis)

	extraction := r.scanner.Detect(
		candidates,
		model.Point{X: loc.X, Y: loc.Y},
		analysis.metrics,
		analysis.columns,
	)

	r.logger.Debug("anchor resolved",
		"dest", anchor.DestinationName,
		"method", extraction.Method,
		"confidence", extraction.Confidence,
		"lines_used", extraction.LinesUsed,
		"spans_pages", extraction.SpansPages,
		"x_filtered", extraction.XFilteredCount)

	return &model.ExtractionRecord{
		CitationID:    anchor.DestinationName,
		SourcePage:    anchor.SourcePage,
		TargetPage:    loc.Page,
		XPosition:     loc.X,
		YPosition:     loc.Y,
		ReferenceText: extraction.Text,
		Method:        extraction.Method,
		Confidence:    extraction.Confidence,
		LinesUsed:     extraction.LinesUsed,
		SpansPages:    extraction.SpansPages,
		Timestamp:     time.Now().UTC(),
	}
}
