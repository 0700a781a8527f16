// Package emit walks each root of a record table and writes one package per
// root through a Builder. Every root is planned first: the subtree is
// flattened depth first with a visited set, dates are normalized and the
// metadata payloads are rendered. Only a complete plan opens a package, so a
// subtree with a cycle or a malformed date leaves nothing behind in the
// output directory.
package emit
