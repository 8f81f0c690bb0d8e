package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// ExportSeparator is the column separator of every CSV export. Spreadsheet
// locales that use a decimal comma open it without an import dialog.
const ExportSeparator = ';'

var measureHeader = []string{
	"index", "label", "raw_score", "measure",
	"infit_mnsq", "outfit_mnsq", "infit_z", "outfit_z", "status",
}

// ExportMeasuresCSV renders person or item rows, one per line.
func ExportMeasuresCSV(rows []MeasureRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := newExportWriter(buf)
	_ = w.Write(measureHeader)
	for _, r := range rows {
		if err := w.Write(measureRecord(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportFullCSV renders persons and items in one table prefixed by a kind
// column, followed by the run metadata.
func ExportFullCSV(sum *AnalysisSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := newExportWriter(buf)
	_ = w.Write(append([]string{"kind"}, measureHeader...))
	for _, r := range sum.Persons {
		if err := w.Write(append([]string{"person"}, measureRecord(r)...)); err != nil {
			return nil, err
		}
	}
	for _, r := range sum.Items {
		if err := w.Write(append([]string{"item"}, measureRecord(r)...)); err != nil {
			return nil, err
		}
	}
	meta := [][]string{
		{"meta", "", "iterations", strconv.Itoa(sum.Iterations)},
		{"meta", "", "converged", strconv.FormatBool(sum.Converged)},
		{"meta", "", "kr20", formatMeasure(sum.KR20)},
	}
	for _, rec := range meta {
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func newExportWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = ExportSeparator
	return w
}

func measureRecord(r MeasureRow) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.Label,
		strconv.Itoa(r.RawScore),
		formatMeasure(r.Measure),
		formatMeasure(r.InfitMNSQ),
		formatMeasure(r.OutfitMNSQ),
		formatMeasure(r.InfitZ),
		formatMeasure(r.OutfitZ),
		string(r.Status),
	}
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
