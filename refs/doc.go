// Package refs locates and assembles bibliographic reference entries.
//
// Given the filtered candidate lines around a resolved citation
// anchor, the [Scanner] finds the start of the entry the anchor points
// at using a priority-ordered pattern table (numbered, author-year,
// DOI, URL, arXiv, numbered-dot), accumulates continuation lines until
// the next entry or a section terminator begins, and reports the
// assembled text with a method label and a confidence score in [0,1].
//
// When no pattern matches, the scan degrades to a low-confidence
// proximity join of the candidate lines rather than failing; when even
// that yields nothing, the result carries the "(no text found)"
// sentinel with zero confidence.
package refs
