// Package spreadsheet reads the purchase-card transaction workbook into a
// domain.Table, keeping each cell's type.
package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/spend-insights/internal/domain"
	"github.com/dvloznov/spend-insights/internal/logger"
)

// DefaultSheet is the sheet name of the customer data template.
const DefaultSheet = "Customer Data Template"

// AllowedExtensions lists the workbook formats the loader can open.
var AllowedExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// CheckExtension rejects filenames the loader cannot read.
func CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &domain.UnsupportedFileError{Filename: filename, Allowed: AllowedExtensions}
}

// Loader reads transaction tables from workbooks.
type Loader struct {
	Sheet    string
	Required []string
}

// NewLoader returns a loader for sheet; an empty name selects DefaultSheet.
func NewLoader(sheet string) *Loader {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Loader{Sheet: sheet, Required: domain.RequiredColumns}
}

// Load opens the workbook at path and reads the transaction sheet.
func (l *Loader) Load(ctx context.Context, path string) (domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()

	return l.readFile(ctx, f)
}

// Read reads the transaction sheet from an in-memory workbook.
func (l *Loader) Read(ctx context.Context, r io.Reader) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return l.readFile(ctx, f)
}

func (l *Loader) readFile(ctx context.Context, f *excelize.File) (domain.Table, error) {
	log := logger.FromContext(ctx)

	idx, err := f.GetSheetIndex(l.Sheet)
	if err != nil || idx < 0 {
		return domain.Table{}, &domain.SchemaError{Sheet: l.Sheet}
	}

	rows, err := f.Rows(l.Sheet)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read sheet %q: %w", l.Sheet, err)
	}
	defer rows.Close()

	var (
		table  domain.Table
		header []string
		rowNum int
		cr     = newCellReader(f, l.Sheet)
	)
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return domain.Table{}, fmt.Errorf("read row %d: %w", rowNum, err)
		}

		if header == nil {
			header = make([]string, len(cols))
			for i, c := range cols {
				header[i] = strings.TrimSpace(c)
			}
			table.Columns = nonEmpty(header)
			continue
		}

		row, blank, err := l.readRow(cr, header, cols, rowNum)
		if err != nil {
			return domain.Table{}, err
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Error(); err != nil {
		return domain.Table{}, fmt.Errorf("iterate sheet %q: %w", l.Sheet, err)
	}
	if header == nil {
		return domain.Table{}, &domain.SchemaError{Sheet: l.Sheet, Detail: "sheet has no header row"}
	}

	if missing := table.MissingColumns(l.Required...); len(missing) > 0 {
		return domain.Table{}, domain.MissingColumn(missing[0])
	}
	if table.Rows == nil {
		table.Rows = []domain.Row{}
	}

	log.Debug().
		Str("sheet", l.Sheet).
		Int("columns", len(table.Columns)).
		Int("rows", table.Len()).
		Msg("Loaded transaction sheet")

	return table, nil
}

// readRow converts one sheet row. blank is true when every cell is empty.
func (l *Loader) readRow(cr *cellReader, header, cols []string, rowNum int) (domain.Row, bool, error) {
	row := make(domain.Row, len(header))
	blank := true
	for i, name := range header {
		if name == "" {
			continue
		}
		raw := ""
		if i < len(cols) {
			raw = cols[i]
		}
		if raw == "" {
			row[name] = domain.Empty()
			continue
		}

		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return nil, false, fmt.Errorf("cell name for row %d column %d: %w", rowNum, i+1, err)
		}
		v, err := cr.value(cell, raw)
		if err != nil {
			return nil, false, err
		}
		if name == domain.ColTransactionAmount && !v.IsEmpty() {
			if _, ok := v.Decimal(); !ok {
				return nil, false, &domain.SchemaError{
					Column: name,
					Detail: fmt.Sprintf("cell %s is not numeric: %q", cell, raw),
				}
			}
		}
		row[name] = v
		blank = false
	}
	return row, blank, nil
}

// cellReader types the cells of one sheet. Date styles are looked up once
// per style index.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) *cellReader {
	cr := &cellReader{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cr.date1904 = *props.Date1904
	}
	return cr
}

func (cr *cellReader) value(cell, raw string) (domain.Value, error) {
	typ, err := cr.f.GetCellType(cr.sheet, cell)
	if err != nil {
		return domain.Value{}, fmt.Errorf("cell type %s: %w", cell, err)
	}

	switch typ {
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return domain.Time(t), nil
		}
		return domain.Text(raw), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			break
		}
		isDate, err := cr.isDateCell(cell)
		if err != nil {
			return domain.Value{}, err
		}
		if isDate {
			t, err := excelize.ExcelDateToTime(serial, cr.date1904)
			if err == nil {
				return domain.Time(t), nil
			}
		}
	}
	return convertCell(typ, raw), nil
}

func (cr *cellReader) isDateCell(cell string) (bool, error) {
	idx, err := cr.f.GetCellStyle(cr.sheet, cell)
	if err != nil {
		return false, fmt.Errorf("cell style %s: %w", cell, err)
	}
	if idx == 0 {
		return false, nil
	}
	if isDate, ok := cr.dateStyles[idx]; ok {
		return isDate, nil
	}

	isDate := false
	if style, err := cr.f.GetStyle(idx); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	cr.dateStyles[idx] = isDate
	return isDate, nil
}

// isDateFormat reports whether a number format displays a date or a time.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateFormatCode(*custom)
	}
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47,
		id >= 50 && id <= 58, id >= 71 && id <= 81:
		return true
	}
	return false
}

// isDateFormatCode looks for date or clock tokens outside quoted literals,
// escapes and bracketed sections such as colors.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			switch c | 0x20 {
			case 'y', 'd', 'h':
				return true
			}
		}
	}
	return false
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// convertCell maps an excelize cell type and raw value onto a typed Value.
func convertCell(typ excelize.CellType, raw string) domain.Value {
	switch typ {
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return domain.Bool(true)
		default:
			return domain.Bool(false)
		}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return domain.Text(raw)
	}

	// Numbers and untyped cells.
	v := domain.Text(raw)
	if d, ok := v.Decimal(); ok {
		return domain.Number(d)
	}
	return v
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
