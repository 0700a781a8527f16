package emit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trimveo/internal/failure"
	"trimveo/internal/isodate"
	"trimveo/internal/records"
)

// PlaceholderName is the file attached beside content in an unapproved format.
const PlaceholderName = "DummyContentFile.txt"

// CycleError reports a container loop reached while walking a root.
type CycleError struct {
	Root string
	// Path runs from the root to the record visited twice.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("container cycle under %s: %s", e.Root, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == failure.ErrCycle
}

// Step is one information object of a planned package.
type Step struct {
	Record  *records.Record
	Depth   int
	Label   string
	AGLS    string
	TRIM    string
	Content *Content
}

// Content is the file attached to a step.
type Content struct {
	Ref    string
	Source string
	// Approved is false when the extension is not a long term sustainable
	// format; the placeholder is attached as well.
	Approved       bool
	PlaceholderRef string
}

// Plan is the flattened subtree of one root, in emission order.
type Plan struct {
	Root  *records.Record
	Name  string
	Steps []Step
}

// Records returns the records in the plan in emission order.
func (p *Plan) Records() []*records.Record {
	out := make([]*records.Record, 0, len(p.Steps))
	for _, step := range p.Steps {
		out = append(out, step.Record)
	}
	return out
}

// Placeholders counts the steps that need the placeholder file.
func (p *Plan) Placeholders() int {
	n := 0
	for _, step := range p.Steps {
		if step.Content != nil && !step.Content.Approved {
			n++
		}
	}
	return n
}

type planner struct {
	emitter    *Emitter
	table      *records.Table
	contentDir string
	plan       *Plan
	visited    map[string]bool
	path       []string
}

// Plan flattens the subtree under root. On error the returned plan holds the
// steps planned before the failure.
func (e *Emitter) Plan(table *records.Table, root *records.Record) (*Plan, error) {
	p := &planner{
		emitter:    e,
		table:      table,
		contentDir: e.contentDir(table),
		plan:       &Plan{Root: root, Name: root.ID.PackageName()},
		visited:    make(map[string]bool),
	}
	err := p.walk(root, 1)
	return p.plan, err
}

func (p *planner) walk(rec *records.Record, depth int) error {
	key := rec.Key()
	if p.visited[key] {
		path := append(append([]string(nil), p.path...), key)
		return &CycleError{Root: p.plan.Root.Key(), Path: path}
	}
	p.visited[key] = true
	p.path = append(p.path, key)
	defer func() { p.path = p.path[:len(p.path)-1] }()

	step, err := p.step(rec, depth)
	if err != nil {
		p.plan.Steps = append(p.plan.Steps, Step{Record: rec, Depth: depth})
		return err
	}
	p.plan.Steps = append(p.plan.Steps, step)

	for _, child := range p.table.Children(rec.ID) {
		if err := p.walk(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) step(rec *records.Record, depth int) (Step, error) {
	e := p.emitter
	name := rec.ID.PackageName()

	created, err := isodate.Normalize(rec.DateCreated)
	if err != nil {
		return Step{}, failure.Wrap(failure.ErrDateFormat, rec.Key(), "normalize date created", "", err)
	}
	about, err := rdfAbout(e.Options.RDFPrefix, name)
	if err != nil {
		return Step{}, failure.Wrap(failure.ErrConfiguration, rec.Key(), "build rdf identifier", "", err)
	}

	var header []string
	if p.table.Binding != nil {
		header = p.table.Binding.Header()
	}
	step := Step{
		Record: rec,
		Depth:  depth,
		Label:  informationObjectLabel(e.Options.LabelPrefix, rec),
		AGLS:   aglsMetadata(rec, about, created, e.templates().AGLSCommon),
		TRIM:   trimMetadata(header, rec.Fields),
	}

	if strings.TrimSpace(rec.ContentFile) == "" {
		return step, nil
	}
	file := contentName(rec.ContentFile)
	if file == "" || !filepath.IsLocal(filepath.FromSlash(file)) {
		return Step{}, failure.Wrap(failure.ErrContentAttach, rec.Key(), "resolve content",
			fmt.Sprintf("invalid content file %q", rec.ContentFile), nil)
	}
	source := filepath.Join(p.contentDir, filepath.FromSlash(file))
	info, err := os.Stat(source)
	switch {
	case err != nil:
		return Step{}, failure.Wrap(failure.ErrContentAttach, rec.Key(), "resolve content", source, err)
	case info.IsDir():
		return Step{}, failure.Wrap(failure.ErrContentAttach, rec.Key(), "resolve content", source, errors.New("is a directory"))
	}

	content := &Content{
		Ref:      name + "/" + filepath.Base(source),
		Source:   source,
		Approved: e.Formats == nil || e.Formats.IsApproved(filepath.Ext(file)),
	}
	if !content.Approved {
		content.PlaceholderRef = name + "/" + PlaceholderName
	}
	step.Content = content
	return step, nil
}
