// Package report writes the multi-sheet analysis workbook.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/domain"
)

// Fixed sheet names and headers.
const (
	SheetNarrative = "AI Insights"
	SheetFindings  = "Stats-Based Insights"

	HeaderNarrative = "AI-Generated Executive Summary"
	HeaderPoint     = "Discussion Point"
	HeaderFinding   = "Key Finding"
)

// ErrDuplicateSheet is returned when two sheets would share a name.
var ErrDuplicateSheet = errors.New("duplicate sheet name")

const narrativeColumnWidth = 120

// Number formats for date cells.
const (
	dateFormat     = "yyyy-mm-dd"
	dateTimeFormat = "yyyy-mm-dd hh:mm:ss"
)

// Input is everything one report is built from.
type Input struct {
	Narrative string
	Findings  []analysis.Finding
	Results   *analysis.Results
}

// Assembler builds report workbooks.
type Assembler struct{}

// NewAssembler returns an Assembler.
func NewAssembler() *Assembler { return &Assembler{} }

// Build creates the workbook. Sheets are, in order: the narrative, the
// findings, the unfiltered summary, then a report and a data sheet for every
// other category with a non-empty summary.
func (a *Assembler) Build(in Input) (*excelize.File, error) {
	if in.Results == nil {
		return nil, fmt.Errorf("build report: no category results")
	}
	all, err := in.Results.Get(analysis.AllSpend)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	f := excelize.NewFile()
	w := &sheetWriter{f: f}
	if w.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		f.Close()
		return nil, fmt.Errorf("build report: header style: %w", err)
	}
	if w.wrap, err = f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}); err != nil {
		f.Close()
		return nil, fmt.Errorf("build report: wrap style: %w", err)
	}
	if w.date, err = numFmtStyle(f, dateFormat); err != nil {
		f.Close()
		return nil, fmt.Errorf("build report: date style: %w", err)
	}
	if w.dateTime, err = numFmtStyle(f, dateTimeFormat); err != nil {
		f.Close()
		return nil, fmt.Errorf("build report: date-time style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetNarrative); err != nil {
		f.Close()
		return nil, fmt.Errorf("build report: %w", err)
	}

	steps := []func() error{
		func() error { return w.narrative(in.Narrative) },
		func() error { return w.findings(in.Findings) },
		func() error { return w.summary(all.Definition.ReportSheet(), all.Summary) },
	}
	for _, res := range in.Results.All() {
		if res.Definition.ID == analysis.AllSpend || res.Summary.IsEmpty() {
			continue
		}
		steps = append(steps,
			func() error { return w.summary(res.Definition.ReportSheet(), res.Summary) },
			func() error { return w.data(res.Definition.DataSheet(), res.Subset) },
		)
	}

	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("build report: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to out.
func (a *Assembler) Write(in Input, out io.Writer) error {
	f, err := a.Build(in)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Bytes builds the workbook and returns its encoded contents.
func (a *Assembler) Bytes(in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Write(in, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the report name for a run started at now.
// The run id suffix keeps two reports from the same second apart.
func FileName(now time.Time, runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	name := "Supplier_Analysis_Report_" + now.Format("20060102_150405")
	if runID != "" {
		name += "_" + runID
	}
	return name + ".xlsx"
}

func numFmtStyle(f *excelize.File, code string) (int, error) {
	return f.NewStyle(&excelize.Style{CustomNumFmt: &code})
}

type sheetWriter struct {
	f        *excelize.File
	header   int
	wrap     int
	date     int
	dateTime int
}

// sheet adds a new sheet. Names compare case-insensitively, and a name that
// is already taken is an error so no sheet is written twice.
func (w *sheetWriter) sheet(name string) error {
	if idx, _ := w.f.GetSheetIndex(name); idx >= 0 {
		return fmt.Errorf("sheet %q: %w", name, ErrDuplicateSheet)
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	return nil
}

func (w *sheetWriter) row(sheet string, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %q row %d: %w", sheet, n, err)
	}
	return w.styleDates(sheet, n, values)
}

// styleDates gives time cells a date format so they do not show as serials.
func (w *sheetWriter) styleDates(sheet string, n int, values []any) error {
	for i, v := range values {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		style := w.date
		if domain.Time(t).HasClock() {
			style = w.dateTime
		}
		cell, err := excelize.CoordinatesToCellName(i+1, n)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("sheet %q cell %s: %w", sheet, cell, err)
		}
	}
	return nil
}

func (w *sheetWriter) headerRow(sheet string, columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := w.row(sheet, 1, values); err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, "A1", last, w.header)
}

func (w *sheetWriter) narrative(text string) error {
	if err := w.headerRow(SheetNarrative, []string{HeaderNarrative}); err != nil {
		return err
	}
	if err := w.f.SetCellValue(SheetNarrative, "A2", text); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(SheetNarrative, "A2", "A2", w.wrap); err != nil {
		return err
	}
	return w.f.SetColWidth(SheetNarrative, "A", "A", narrativeColumnWidth)
}

func (w *sheetWriter) findings(findings []analysis.Finding) error {
	if err := w.sheet(SheetFindings); err != nil {
		return err
	}
	if err := w.headerRow(SheetFindings, []string{HeaderPoint, HeaderFinding}); err != nil {
		return err
	}
	for i, fd := range findings {
		if err := w.row(SheetFindings, i+2, []any{fd.Label, fd.Text}); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) summary(name string, s analysis.SummaryTable) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	if err := w.headerRow(name, s.Columns()); err != nil {
		return err
	}
	for i, r := range s.Rows {
		values := make([]any, 0, len(r.Key)+len(r.Values))
		for _, k := range r.Key {
			values = append(values, k.Interface())
		}
		for _, v := range r.Values {
			values = append(values, v.InexactFloat64())
		}
		if err := w.row(name, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) data(name string, t domain.Table) error {
	if err := w.sheet(name); err != nil {
		return err
	}
	if err := w.headerRow(name, t.Columns); err != nil {
		return err
	}
	for i, r := range t.Rows {
		values := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			values[j] = r.Get(c).Interface()
		}
		if err := w.row(name, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
