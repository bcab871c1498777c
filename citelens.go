// Package citelens resolves inline citation anchors in a document to
// the bibliographic reference entries they point at.
//
// Basic usage:
//
//	result, err := citelens.Open("paper.pdf").Resolve(ctx)
//	if err != nil {
//	    // handle error
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.CitationID, rec.Confidence, rec.ReferenceText)
//	}
//
// With options:
//
//	result, err := citelens.Open("paper.pdf").
//	    Concurrency(8).
//	    MinConfidence(0.5).
//	    Resolve(ctx)
//
// For advanced use cases, the lower-level resolver and pdfdoc packages
// are also available, and any backend that implements
// model.DocumentSource can be plugged in via [FromSource].
package citelens

import (
	"github.com/docview/citelens/model"
	"github.com/docview/citelens/resolver"
)

// Open prepares a PDF file for citation resolution and returns an
// Extractor for fluent configuration. The file is opened lazily when
// Resolve is called, and closed again before Resolve returns.
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		config:   resolver.DefaultConfig(),
	}
}

// FromSource creates an Extractor over an already-loaded document
// source. The caller keeps ownership of the source's lifecycle.
func FromSource(source model.DocumentSource) *Extractor {
	return &Extractor{
		source: source,
		config: resolver.DefaultConfig(),
	}
}

// Must is a helper that wraps a call to a function returning
// (*resolver.Result, error) and panics if the error is non-nil. It is
// intended for scripts or tests where error handling would be
// cumbersome.
func Must(result *resolver.Result, err error) *resolver.Result {
	if err != nil {
		panic(err)
	}
	return result
}
