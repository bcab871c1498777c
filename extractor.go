package citelens

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docview/citelens/model"
	"github.com/docview/citelens/pdfdoc"
	"github.com/docview/citelens/resolver"
)

// Extractor provides a fluent interface for resolving citation links in a
// document. Each configuration method returns a new Extractor instance,
// making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	source   model.DocumentSource

	// Lifecycle
	ownsSource   bool // true if we opened the source and should close it
	sourceOpened bool // true if the source has been opened

	// Configuration
	config        resolver.Config
	minConfidence float64

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:      e.filename,
		source:        e.source,
		ownsSource:    e.ownsSource,
		sourceOpened:  e.sourceOpened,
		config:        e.config,
		minConfidence: e.minConfidence,
		err:           e.err,
	}
}

// ensureSource opens the document source if not already open.
func (e *Extractor) ensureSource() error {
	if e.sourceOpened {
		return nil
	}
	if e.source != nil {
		e.sourceOpened = true
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	doc, err := pdfdoc.Open(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.source = doc
	e.ownsSource = true
	e.sourceOpened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsSource {
		if closer, ok := e.source.(interface{ Close() error }); ok {
			err := closer.Close()
			e.source = nil
			e.ownsSource = false
			e.sourceOpened = false
			return err
		}
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Concurrency sets the number of workers used to resolve citation anchors.
// Values below 1 are ignored.
//
// Example:
//
//	result, err := citelens.Open("doc.pdf").Concurrency(8).Resolve(ctx)
func (e *Extractor) Concurrency(n int) *Extractor {
	newExt := e.clone()
	if n >= 1 {
		newExt.config.Concurrency = n
	}
	return newExt
}

// RateLimit caps anchor resolution at the given number of anchors per
// second. A value of zero or less disables rate limiting.
//
// Example:
//
//	result, err := citelens.Open("doc.pdf").RateLimit(50).Resolve(ctx)
func (e *Extractor) RateLimit(perSecond float64) *Extractor {
	newExt := e.clone()
	newExt.config.RateLimit = perSecond
	return newExt
}

// Logger sets the structured logger used during resolution. When unset,
// slog.Default() is used.
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	newExt := e.clone()
	newExt.config.Logger = l
	return newExt
}

// MinConfidence drops resolved records whose confidence falls below the
// given threshold. Records from failed lookups are unaffected because
// failed anchors never produce records.
//
// Example:
//
//	result, err := citelens.Open("doc.pdf").MinConfidence(0.5).Resolve(ctx)
func (e *Extractor) MinConfidence(threshold float64) *Extractor {
	newExt := e.clone()
	newExt.minConfidence = threshold
	return newExt
}

// WithConfig replaces the full resolver configuration. Useful when the
// individual chain methods do not expose the knob being tuned.
func (e *Extractor) WithConfig(cfg resolver.Config) *Extractor {
	newExt := e.clone()
	newExt.config = cfg
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Resolve locates every citation link in the document and extracts the
// reference entry each one points at. This is a terminal operation: if the
// Extractor opened the document itself, the document is closed before
// Resolve returns.
//
// A cancelled context is not an error. Resolution stops dispatching new
// anchors and the records gathered so far are returned.
//
// Example:
//
//	result, err := citelens.Open("paper.pdf").Resolve(ctx)
func (e *Extractor) Resolve(ctx context.Context) (*resolver.Result, error) {
	if e.err != nil {
		return nil, e.err
	}

	if err := e.ensureSource(); err != nil {
		return nil, err
	}
	defer e.Close()

	r := resolver.NewWithConfig(e.source, e.config)
	result, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if e.minConfidence > 0 && result != nil {
		kept := result.Records[:0]
		for _, rec := range result.Records {
			if rec.Confidence >= e.minConfidence {
				kept = append(kept, rec)
			}
		}
		result.Records = kept
		result.Summary = model.Summarize(result.Records)
	}

	return result, nil
}

// PageCount returns the number of pages in the document.
// Note: this does NOT close the source, allowing further operations.
//
// Example:
//
//	ext := citelens.Open("paper.pdf")
//	defer ext.Close()
//	count, err := ext.PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureSource(); err != nil {
		return 0, err
	}
	return e.source.PageCount(), nil
}
