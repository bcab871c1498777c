// Package pdfdoc implements the engine's document source over PDF
// files.
//
// It adapts the ledongthuc/pdf reader to the model.DocumentSource
// interface: positioned text runs per page, link annotations with
// their named destinations, named destination resolution through the
// catalog's Dests dictionary and Names tree, and page bounds from the
// media box.
//
// Text must already be extractable as positioned runs; scanned or
// raster-only pages simply report no runs.
package pdfdoc
