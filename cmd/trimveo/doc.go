// Package main hosts the trimveo CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides and
// hands conversion work to internal/convert. Reports, format listings and
// package housekeeping are thin views over the internal packages.
package main
