// Package export renders record sets as spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"hisapi/internal/model"
)

// Dataset is a rectangular table with a header row.
type Dataset struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// FromRows builds a dataset from records that know how to render themselves as a row.
func FromRows[T model.Tabular](sheet string, items []T) Dataset {
	var zero T
	headers, _ := zero.TableRow()
	d := Dataset{Sheet: sheet, Headers: headers, Rows: make([][]any, 0, len(items))}
	for _, it := range items {
		_, row := it.TableRow()
		d.Rows = append(d.Rows, row)
	}
	return d
}

// Select keeps only the named columns, in the given order. Names match headers
// case-insensitively. An empty selection keeps every column.
func (d Dataset) Select(columns []string) (Dataset, error) {
	if len(columns) == 0 {
		return d, nil
	}
	idx := make([]int, 0, len(columns))
	for _, c := range columns {
		pos := -1
		for i, h := range d.Headers {
			if strings.EqualFold(strings.TrimSpace(c), h) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return Dataset{}, fmt.Errorf("unknown column %q", c)
		}
		idx = append(idx, pos)
	}
	out := Dataset{Sheet: d.Sheet, Headers: make([]string, len(idx)), Rows: make([][]any, len(d.Rows))}
	for j, i := range idx {
		out.Headers[j] = d.Headers[i]
	}
	for r, row := range d.Rows {
		sel := make([]any, len(idx))
		for j, i := range idx {
			sel[j] = row[i]
		}
		out.Rows[r] = sel
	}
	return out, nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == model.FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders d in the given format.
func Write(w io.Writer, format string, d Dataset) error {
	switch format {
	case model.FormatXLSX:
		return WriteXLSX(w, d)
	case model.FormatCSV:
		return WriteCSV(w, d)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, d Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := d.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if len(d.Headers) > 0 {
		headers := make([]any, len(d.Headers))
		for i, h := range d.Headers {
			headers[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(d.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	for i, row := range d.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Headers); err != nil {
		return err
	}
	for _, row := range d.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(cellValue(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return t.StringFixed(2)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		return v
	}
}
