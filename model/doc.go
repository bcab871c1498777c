// Package model provides the data types shared across the citation
// resolution pipeline.
//
// This package defines the user-facing structures that represent the
// engine's inputs and outputs. All resolution operations ultimately
// consume and produce these types, making them the primary API for
// integrating the engine.
//
// # Inputs
//
// The [DocumentSource] interface is the engine's view of an already
// loaded document: positioned [TextRun] values per page, link
// [Annotation] entries, named destination resolution, and page bounds.
// Any backend that can supply positioned text runs can implement it;
// the pdfdoc package provides the PDF implementation.
//
// # Outputs
//
// Each resolved citation anchor yields one [ExtractionRecord] with the
// extracted reference text, the [Method] that located it, and a
// confidence score in [0,1]. A run's records reduce to an
// [ExtractionSummary] via [Summarize].
//
// # Geometry
//
// Geometric primitives support position calculations:
//
//   - [BBox] - bounding box with containment and edge accessors,
//     also serving as the page [Bounds] type
//   - [Point] - 2D anchor target point
//
// All coordinates follow the PDF convention: origin at the bottom-left
// of the page, y increasing upward.
package model
