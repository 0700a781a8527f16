// Package export reads tab separated records exports and turns each file into
// a records.Table.
//
// Exports are usually UTF-16 with a byte order mark, as produced by the
// records system's "save as unicode text" option; UTF-8 input is accepted
// when configured. The first non-empty line is the header. Rows that fail to
// parse are reported individually and skipped, while a header that cannot be
// bound skips the whole file.
package export
