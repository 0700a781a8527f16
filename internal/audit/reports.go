// Package audit writes the tab separated reports and the console summary
// produced at the end of a run.
package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trimveo/internal/records"
)

// Report file names.
const (
	ExportedReport = "ExportedReport.txt"
	AllEntities    = "AllEntities.txt"
	AllFiles       = "AllFiles.txt"
)

// Header is the column layout shared by every report.
var Header = []string{
	"ID",
	"VEO Name",
	"Container",
	"Title",
	"Date Created",
	"Date Registered",
	"Classification",
	"Record Type",
}

// Filter selects the records written to a report.
type Filter func(*records.Record) bool

// Report pairs a file name with its filter.
type Report struct {
	Name   string
	Filter Filter
}

// Reports lists the reports written after every run.
var Reports = []Report{
	{Name: ExportedReport, Filter: func(r *records.Record) bool { return r.Exported() }},
	{Name: AllEntities, Filter: func(*records.Record) bool { return true }},
	{Name: AllFiles, Filter: func(r *records.Record) bool { return r.Exported() && r.Root }},
}

// WriteReports writes every report into dir and returns the paths written.
// recs must already be in identifier order.
func WriteReports(dir string, recs []*records.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	paths := make([]string, 0, len(Reports))
	for _, report := range Reports {
		path := filepath.Join(dir, report.Name)
		if err := writeReportFile(path, recs, report.Filter); err != nil {
			return paths, fmt.Errorf("write %s: %w", report.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeReportFile(path string, recs []*records.Record, filter Filter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteReport(f, recs, filter); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteReport writes the header and one CRLF terminated line per record
// accepted by filter. Cells are written as is.
func WriteReport(w io.Writer, recs []*records.Record, filter Filter) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, Header)
	for _, rec := range recs {
		if filter != nil && !filter(rec) {
			continue
		}
		writeLine(bw, Row(rec))
	}
	return bw.Flush()
}

// Row renders rec in Header order.
func Row(rec *records.Record) []string {
	return []string{
		rec.Key(),
		rec.RawID,
		rec.ContainerKey(),
		rec.Title,
		rec.DateCreated,
		rec.DateRegistered,
		rec.Classification,
		rec.RecordType,
	}
}

func writeLine(w *bufio.Writer, cells []string) {
	w.WriteString(strings.Join(cells, "\t"))
	w.WriteString("\r\n")
}
