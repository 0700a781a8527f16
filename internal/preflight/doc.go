// Package preflight provides readiness checks for the filesystem paths and
// credentials a conversion depends on.
//
// These checks run in two contexts:
//   - The convert runner checks the output and state directories before it
//     takes the run lock, so an unwritable destination fails the whole run.
//   - The CLI "trimveo config validate" command runs RunAll and prints every
//     result.
//
// Checks for optional settings are skipped when the setting is empty.
package preflight
