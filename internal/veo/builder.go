// Package veo writes VERS V3 packages: a directory holding VEOContent.xml,
// VEOHistory.xml, their signature files and the content files, sealed into a
// <name>.veo.zip archive.
package veo

import (
	"crypto"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trimveo/internal/failure"
	"trimveo/internal/fileutil"
	"trimveo/internal/logging"
	"trimveo/internal/signing"
	"trimveo/internal/staging"
)

const (
	ContentFile          = "VEOContent.xml"
	HistoryFile          = "VEOHistory.xml"
	ContentSignatureFile = "VEOContentSignature1.xml"
	HistorySignatureFile = "VEOHistorySignature1.xml"
	ReadmeFile           = "VEOReadme.txt"
)

// Signer seals the content and history files.
type Signer interface {
	Sign(h crypto.Hash, data []byte) ([]byte, string, error)
	Certificates() [][]byte
}

// Builder opens packages that share a signer, initiator and readme.
type Builder struct {
	Signer        Signer
	UserID        string
	Readme        string
	KeepDirectory bool
	Now           func() time.Time
	Logger        *slog.Logger
}

type state int

const (
	stateOpen state = iota
	stateFinalized
	stateAbandoned
)

// Package is one package under construction. Calls must follow the order
// information object, metadata packages, information pieces with their
// content files, then the next information object.
type Package struct {
	builder  *Builder
	name     string
	outDir   string
	dir      string
	hashName string
	hash     crypto.Hash
	state    state

	content  strings.Builder
	events   []event
	objects  int
	depth    int
	inObject bool
	inPiece  bool
	files    map[string]string
	bytes    int64
}

type event struct {
	when        time.Time
	eventType   string
	initiator   string
	description string
}

// Open removes any earlier artifacts named name in outputDir and starts a new
// package directory.
func (b *Builder) Open(outputDir, name, hashAlgorithm string) (*Package, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return nil, failure.Wrap(failure.ErrFinalize, name, "open package", "invalid package name", nil)
	}
	h, err := signing.HashFor(hashAlgorithm)
	if err != nil {
		return nil, failure.Wrap(failure.ErrFinalize, name, "open package", "", err)
	}
	if err := staging.RemovePackage(outputDir, name, b.logger()); err != nil {
		return nil, failure.Wrap(failure.ErrFinalize, name, "open package", "", err)
	}
	dir := filepath.Join(outputDir, name+staging.DirSuffix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, failure.Wrap(failure.ErrFinalize, name, "open package", "create directory", err)
	}

	pkg := &Package{
		builder:  b,
		name:     name,
		outDir:   outputDir,
		dir:      dir,
		hashName: hashAlgorithm,
		hash:     h,
		files:    make(map[string]string),
	}
	if b.Readme != "" {
		if err := fileutil.CopyFile(b.Readme, filepath.Join(dir, ReadmeFile)); err != nil {
			pkg.removeArtifacts()
			return nil, failure.Wrap(failure.ErrFinalize, name, "open package", "copy readme", err)
		}
	}
	writeContentHeader(&pkg.content, hashAlgorithm)
	return pkg, nil
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return logging.NewNop()
	}
	return b.Logger
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Dir returns the package directory.
func (p *Package) Dir() string { return p.dir }

// ZipPath returns the location of the sealed archive.
func (p *Package) ZipPath() string {
	return filepath.Join(p.outDir, p.name+staging.ZipSuffix)
}

// ContentBytes reports the bytes copied into the package so far.
func (p *Package) ContentBytes() int64 { return p.bytes }

// InformationObjects reports how many information objects were added.
func (p *Package) InformationObjects() int { return p.objects }

func (p *Package) checkOpen(op string) error {
	if p.state != stateOpen {
		return failure.Wrap(failure.ErrFinalize, p.name, op, "package is closed", nil)
	}
	return nil
}

// AddEvent records a history event initiated by the builder's user.
func (p *Package) AddEvent(eventType, description string) error {
	if err := p.checkOpen("add event"); err != nil {
		return err
	}
	p.events = append(p.events, event{
		when:        p.builder.now(),
		eventType:   eventType,
		initiator:   p.builder.UserID,
		description: description,
	})
	return nil
}

// AddInformationObject starts a new information object. The first object
// must be at depth 1 and each later object may be at most one level deeper
// than the one before it.
func (p *Package) AddInformationObject(label string, depth int) error {
	if err := p.checkOpen("add information object"); err != nil {
		return err
	}
	switch {
	case depth < 1:
		return failure.Wrap(failure.ErrFinalize, p.name, "add information object", fmt.Sprintf("invalid depth %d", depth), nil)
	case p.objects == 0 && depth != 1:
		return failure.Wrap(failure.ErrFinalize, p.name, "add information object", fmt.Sprintf("first object at depth %d", depth), nil)
	case p.objects > 0 && depth > p.depth+1:
		return failure.Wrap(failure.ErrFinalize, p.name, "add information object",
			fmt.Sprintf("depth %d follows depth %d", depth, p.depth), nil)
	}
	p.closeObject()
	writeObjectStart(&p.content, label, depth)
	p.objects++
	p.depth = depth
	p.inObject = true
	return nil
}

// AddMetadataPackage adds a metadata package to the current information
// object. content is inserted verbatim and must already be valid XML.
func (p *Package) AddMetadataPackage(schemaURI, syntaxURI, content string) error {
	if err := p.checkOpen("add metadata package"); err != nil {
		return err
	}
	if !p.inObject || p.inPiece {
		return failure.Wrap(failure.ErrFinalize, p.name, "add metadata package", "no information object awaiting metadata", nil)
	}
	writeMetadataPackage(&p.content, schemaURI, syntaxURI, content)
	return nil
}

// AddInformationPiece starts an information piece in the current
// information object.
func (p *Package) AddInformationPiece(label string) error {
	if err := p.checkOpen("add information piece"); err != nil {
		return err
	}
	if !p.inObject {
		return failure.Wrap(failure.ErrFinalize, p.name, "add information piece", "no information object", nil)
	}
	p.closePiece()
	writePieceStart(&p.content, label)
	p.inPiece = true
	return nil
}

// AddContentFile copies source into the package at ref, a slash separated
// path relative to the package directory, and records its hash. Adding the
// same ref twice reuses the first copy.
func (p *Package) AddContentFile(ref, source string) error {
	if err := p.checkOpen("add content file"); err != nil {
		return err
	}
	if !p.inPiece {
		return failure.Wrap(failure.ErrContentAttach, p.name, "add content file", "no information piece", nil)
	}
	local := filepath.FromSlash(ref)
	if ref == "" || !filepath.IsLocal(local) {
		return failure.Wrap(failure.ErrContentAttach, p.name, "add content file", fmt.Sprintf("invalid reference %q", ref), nil)
	}

	digest, ok := p.files[ref]
	if !ok {
		h := p.hash.New()
		n, err := fileutil.CopyFileHashed(source, filepath.Join(p.dir, local), h)
		if err != nil {
			return failure.Wrap(failure.ErrContentAttach, p.name, "add content file", source, err)
		}
		digest = base64.StdEncoding.EncodeToString(h.Sum(nil))
		p.files[ref] = digest
		p.bytes += n
	}
	writeContentFile(&p.content, ref, digest)
	return nil
}

func (p *Package) closePiece() {
	if p.inPiece {
		writePieceEnd(&p.content)
		p.inPiece = false
	}
}

func (p *Package) closeObject() {
	p.closePiece()
	if p.inObject {
		writeObjectEnd(&p.content)
		p.inObject = false
	}
}

// Finalize writes the content and history files, signs them when sign is
// set, and zips the package directory. The directory is removed afterwards
// unless the builder keeps directories. Any failure abandons the package.
func (p *Package) Finalize(sign bool) (err error) {
	if err := p.checkOpen("finalize"); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			p.Abandon()
		}
	}()

	if p.objects == 0 {
		return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "package has no information objects", nil)
	}
	p.closeObject()
	writeContentFooter(&p.content)

	content := []byte(p.content.String())
	history := renderHistory(p.events)
	if err := os.WriteFile(filepath.Join(p.dir, ContentFile), content, 0o644); err != nil {
		return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "write content", err)
	}
	if err := os.WriteFile(filepath.Join(p.dir, HistoryFile), history, 0o644); err != nil {
		return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "write history", err)
	}

	if sign {
		if p.builder.Signer == nil {
			return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "signing requested without a signer", nil)
		}
		signatures := map[string][]byte{
			ContentSignatureFile: content,
			HistorySignatureFile: history,
		}
		for _, file := range []string{ContentSignatureFile, HistorySignatureFile} {
			block, err := p.signatureBlock(signatures[file])
			if err != nil {
				return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "sign "+file, err)
			}
			if err := os.WriteFile(filepath.Join(p.dir, file), block, 0o644); err != nil {
				return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "write "+file, err)
			}
		}
	}

	if err := zipDirectory(p.dir, p.name+staging.DirSuffix, p.ZipPath()); err != nil {
		_ = os.Remove(p.ZipPath())
		return failure.Wrap(failure.ErrFinalize, p.name, "finalize", "zip package", err)
	}

	p.state = stateFinalized
	if !p.builder.KeepDirectory {
		if err := os.RemoveAll(p.dir); err != nil {
			logging.WarnWithContext(p.builder.logger(), "failed to remove package directory", "package_cleanup_failed",
				logging.String("path", p.dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}
	return nil
}

func (p *Package) signatureBlock(data []byte) ([]byte, error) {
	sig, algorithm, err := p.builder.Signer.Sign(p.hash, data)
	if err != nil {
		return nil, err
	}
	return renderSignature(signatureData{
		when:         p.builder.now(),
		algorithm:    algorithm,
		signer:       p.builder.UserID,
		signature:    sig,
		certificates: p.builder.Signer.Certificates(),
	}), nil
}

// Abandon discards the package directory and any partial archive. It is a
// no-op on a finalized package.
func (p *Package) Abandon() {
	if p.state != stateOpen {
		return
	}
	p.state = stateAbandoned
	p.removeArtifacts()
}

func (p *Package) removeArtifacts() {
	if err := staging.RemovePackage(p.outDir, p.name, p.builder.logger()); err != nil {
		logging.WarnWithContext(p.builder.logger(), "failed to remove abandoned package", "package_cleanup_failed",
			logging.String("package", p.name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the package artifacts manually"),
		)
	}
}
