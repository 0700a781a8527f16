// Package records holds the in-memory model of a records export: one Record
// per row, the per-file Table keyed by canonical identifier, the Normalizer
// that turns raw rows into Records, the assembly pass that resolves container
// references into a tree, and the run-wide Registry used for auditing.
//
// Tables are built and mutated by a single goroutine; none of the types here
// are safe for concurrent use.
package records
