package emit

// Package receives the calls that make up one package.
type Package interface {
	AddEvent(eventType, description string) error
	AddInformationObject(label string, depth int) error
	AddMetadataPackage(schemaURI, syntaxURI, content string) error
	AddInformationPiece(label string) error
	AddContentFile(ref, source string) error
	Finalize(sign bool) error
	Abandon()
}

// Builder opens packages. Any earlier package with the same name in
// outputDir is removed first.
type Builder interface {
	Open(outputDir, name, hashAlgorithm string) (Package, error)
}

// FormatValidator judges whether a file extension is a long term
// sustainable format.
type FormatValidator interface {
	IsApproved(ext string) bool
}

type contentSizer interface {
	ContentBytes() int64
}
