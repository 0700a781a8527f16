package audit

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"trimveo/internal/records"
)

// Summary holds the counters shown at the end of a run.
type Summary struct {
	RunID         string
	Started       time.Time
	Duration      time.Duration
	User          string
	Inputs        []string
	HashAlgorithm string
	OutputDir     string
	Signer        string
	DryRun        bool

	Files        int
	SkippedFiles int
	Rows         int
	Rejected     int
	Roots        int
	Exported     int
	FailedRoots  int
	Stubs        int
	Placeholders int
	ContentBytes int64
	Cycles       [][]string
}

// Undefined returns the records referenced as containers but never defined.
func Undefined(recs []*records.Record) []*records.Record {
	var out []*records.Record
	for _, rec := range recs {
		if rec.Referenced && !rec.Defined {
			out = append(out, rec)
		}
	}
	return out
}

// Unattached counts defined records that are neither roots nor referenced
// as a container.
func Unattached(recs []*records.Record) int {
	n := 0
	for _, rec := range recs {
		if rec.Defined && !rec.Root && !rec.Referenced {
			n++
		}
	}
	return n
}

// RenderSummary writes the run summary tables to w.
func RenderSummary(w io.Writer, s Summary, recs []*records.Record) {
	fmt.Fprintln(w, renderTable([]string{"Run", ""}, [][]string{
		{"Run ID", s.RunID},
		{"Started", s.Started.Format(time.RFC3339)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
		{"User", s.User},
		{"Inputs", strings.Join(s.Inputs, "\n")},
		{"Hash algorithm", s.HashAlgorithm},
		{"Output directory", s.OutputDir},
		{"Signer", s.Signer},
	}, false))

	totals := [][]string{
		{"Files processed", humanize.Comma(int64(s.Files))},
		{"Files skipped", humanize.Comma(int64(s.SkippedFiles))},
		{"Rows read", humanize.Comma(int64(s.Rows))},
		{"Rows rejected", humanize.Comma(int64(s.Rejected))},
		{"Roots", humanize.Comma(int64(s.Roots))},
		{"Packages generated", humanize.Comma(int64(s.Exported))},
		{"Roots failed", humanize.Comma(int64(s.FailedRoots))},
		{"Stubs", humanize.Comma(int64(s.Stubs))},
		{"Placeholder attachments", humanize.Comma(int64(s.Placeholders))},
		{"Content copied", humanize.IBytes(uint64(s.ContentBytes))},
	}
	if s.DryRun {
		totals = append(totals, []string{"Mode", "dry run"})
	}
	fmt.Fprintln(w, renderTable([]string{"Totals", ""}, totals, true))

	undefined := Undefined(recs)
	if len(undefined) > 0 {
		rows := make([][]string, 0, len(undefined))
		for _, rec := range undefined {
			rows = append(rows, []string{rec.Key(), rec.Source, strings.Join(rec.ReferencedBy(), ", ")})
		}
		fmt.Fprintln(w, "Referenced but not defined in any export:")
		fmt.Fprintln(w, renderTable([]string{"ID", "Export", "Referenced by"}, rows, false))
	}
	if n := Unattached(recs); n > 0 {
		fmt.Fprintf(w, "Defined but neither a root nor referenced: %d\n", n)
	}
	if len(s.Cycles) > 0 {
		fmt.Fprintln(w, "Container cycles (not exported):")
		for _, cycle := range s.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(cycle, " -> "))
		}
	}

	var packages [][]string
	for _, rec := range recs {
		if rec.Root && rec.Exported() {
			packages = append(packages, []string{rec.ID.PackageName(), rec.Key(), rec.Source})
		}
	}
	sort.Slice(packages, func(i, j int) bool { return packages[i][0] < packages[j][0] })
	if len(packages) == 0 {
		fmt.Fprintln(w, "Packages generated: none")
		return
	}
	fmt.Fprintln(w, "Packages generated:")
	fmt.Fprintln(w, renderTable([]string{"Package", "ID", "Export"}, packages, false))
}

func renderTable(headers []string, rows [][]string, alignValues bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	if alignValues {
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		})
	}
	return tw.Render()
}
