// Package exportsvc renders tabular data as CSV or PDF for download.
package exportsvc

import (
	"encoding/csv"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

// Table is the format-agnostic input of the writers: a titled header row plus
// data rows, every cell already formatted for display.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// WriteCSV writes the table as RFC 4180 CSV, headers first.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "writing CSV rows")
	}
	return nil
}

// WritePDF writes the table as a landscape A4 PDF with a title line and a
// striped grid, columns sized evenly.
func WritePDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, t.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(t.Headers))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range t.Headers {
		pdf.CellFormat(colW, 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	fill := false
	pdf.SetFillColor(245, 245, 245)
	for _, row := range t.Rows {
		for _, cell := range row {
			pdf.CellFormat(colW, 6, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing PDF")
	}
	return nil
}
