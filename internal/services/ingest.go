package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParsedResponses is a response table read from a spreadsheet export.
type ParsedResponses struct {
	PersonLabels []string
	ItemLabels   []string
	Rows         [][]float64
}

// truthy cell values that count as a correct answer.
var truthy = map[string]struct{}{
	"1": {}, "true": {}, "yes": {}, "да": {}, "+": {},
}

// ParseResponsesCSV reads a response table. The first row is a header whose
// first cell names the person column; the following non-blank cells name
// the items, up to the first blank one. Each later row starts with the
// person label. Cells map to 0/1: blank -> 0, number -> 1 if > 0, truthy
// text -> 1, other text -> 0. Rows without any non-blank cell are skipped.
// The separator is detected from the header among ';', ',' and tab.
func ParseResponsesCSV(r io.Reader) (*ParsedResponses, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	out := &ParsedResponses{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectSeparator(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, NewInvalidError(fmt.Sprintf("malformed csv: %v", err))
	}

	header := records[0]
	for _, h := range header[1:] {
		h = strings.TrimSpace(h)
		if h == "" {
			break
		}
		out.ItemLabels = append(out.ItemLabels, h)
	}
	numItems := len(out.ItemLabels)
	if numItems == 0 {
		return &ParsedResponses{}, nil
	}

	for _, rec := range records[1:] {
		if len(rec) <= 1 {
			continue
		}
		row := make([]float64, numItems)
		hasData := false
		for j := 0; j < numItems && j+1 < len(rec); j++ {
			v, ok := parseCell(rec[j+1])
			if !ok {
				continue
			}
			row[j] = v
			hasData = true
		}
		if !hasData {
			continue
		}
		label := strings.TrimSpace(rec[0])
		if label == "" {
			label = "P" + strconv.Itoa(len(out.Rows)+1)
		}
		out.PersonLabels = append(out.PersonLabels, label)
		out.Rows = append(out.Rows, row)
	}
	if len(out.Rows) == 0 {
		return &ParsedResponses{}, nil
	}
	return out, nil
}

// parseCell returns the 0/1 value of a cell and whether it held data.
func parseCell(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > 0 {
			return 1, true
		}
		return 0, true
	}
	if _, ok := truthy[strings.ToLower(s)]; ok {
		return 1, true
	}
	return 0, true
}

func detectSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ';', 0
	for _, sep := range []rune{';', ',', '\t'} {
		if c := bytes.Count(line, []byte(string(sep))); c > bestCount {
			best, bestCount = sep, c
		}
	}
	return best
}
