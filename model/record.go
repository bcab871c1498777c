package model

import "time"

// Method identifies how a reference entry was located.
type Method string

const (
	MethodNumbered    Method = "numbered"    // entry starts with [n]
	MethodAuthorYear  Method = "authorYear"  // entry starts with Author, I. ... (year)
	MethodDOI         Method = "doi"         // entry starts with a DOI
	MethodURL         Method = "url"         // entry starts with a URL
	MethodArxiv       Method = "arxiv"       // entry starts with an arXiv identifier
	MethodNumberedDot Method = "numberedDot" // entry starts with "n. "
	MethodProximity   Method = "proximity"   // no pattern matched; nearby lines joined
	MethodNone        Method = "none"        // no usable text found
)

// NoTextFound is the sentinel reference text emitted when cleaning
// leaves nothing usable. Records carrying it have MethodNone and zero
// confidence.
const NoTextFound = "(no text found)"

// Confidence thresholds used for summary bucketing.
const (
	HighConfidence = 0.7
	LowConfidence  = 0.5
)

// ExtractionRecord is the result of resolving one citation anchor.
// Records are immutable once emitted.
type ExtractionRecord struct {
	CitationID    string    `json:"citation_id"`
	SourcePage    int       `json:"source_page"`
	TargetPage    int       `json:"target_page"`
	XPosition     float64   `json:"x_position"`
	YPosition     float64   `json:"y_position"`
	ReferenceText string    `json:"reference_text"`
	Method        Method    `json:"method"`
	Confidence    float64   `json:"confidence"`
	LinesUsed     int       `json:"lines_used"`
	SpansPages    bool      `json:"spans_pages"`
	Timestamp     time.Time `json:"timestamp"`
}

// ExtractionSummary aggregates the records of one document run.
type ExtractionSummary struct {
	Total          int            `json:"total"`
	ByMethod       map[Method]int `json:"by_method"`
	MeanConfidence float64        `json:"mean_confidence"`
	HighConfidence int            `json:"high_confidence"` // confidence > 0.7
	LowConfidence  int            `json:"low_confidence"`  // confidence < 0.5
}

// Summarize reduces a record set to its aggregate summary.
func Summarize(records []ExtractionRecord) ExtractionSummary {
	summary := ExtractionSummary{
		Total:    len(records),
		ByMethod: make(map[Method]int),
	}

	if len(records) == 0 {
		return summary
	}

	total := 0.0
	for _, rec := range records {
		summary.ByMethod[rec.Method]++
		total += rec.Confidence
		if rec.Confidence > HighConfidence {
			summary.HighConfidence++
		}
		if rec.Confidence < LowConfidence {
			summary.LowConfidence++
		}
	}
	summary.MeanConfidence = total / float64(len(records))

	return summary
}
