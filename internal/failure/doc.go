// Package failure defines the error markers shared by the conversion
// pipeline and the helpers that classify an error by how much work it
// invalidates: a row, an export file, a package root, or the whole run.
//
// Producers wrap causes with Wrap (or return a typed error whose Is method
// matches a marker) so the runner can decide whether to skip a row, skip a
// file, skip a root, or stop.
package failure
