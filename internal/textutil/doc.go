// Package textutil provides small text helpers shared by the metadata and
// packaging code: XML character escaping that tolerates values which already
// contain entities, XML element names derived from column labels, and file
// name sanitizing for paths inside packages.
package textutil
