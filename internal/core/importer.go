package core

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset is a parsed CSV upload: one header row and its data rows.
type Dataset struct {
	Header  []string
	Records [][]string
}

// ReadDataset parses a comma-separated upload.
// A UTF-8 BOM is skipped and invalid UTF-8 is replaced.
func ReadDataset(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidCSV)
	}

	return &Dataset{Header: records[0], Records: records[1:]}, nil
}

// Normalize projects a dataset onto the schema's column order.
//
// Headers are matched case- and space-insensitively. Blank lines are skipped
// by the CSV reader, but a row of bare delimiters is kept. Empty text cells
// become Placeholder; timestamp cells are parsed and become nil when empty or
// unparseable. Text longer than MaxCellLength is truncated. A dataset that
// lacks any schema column fails with a *SchemaMismatchError.
func Normalize(s Schema, ds *Dataset) ([]Row, error) {
	if ds == nil {
		return nil, errors.New("normalize: nil dataset")
	}

	positions, err := resolvePositions(s, ds.Header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(ds.Records))
	for _, record := range ds.Records {
		row := make(Row, len(s.Columns))
		for i, col := range s.Columns {
			row[i] = normalizeCell(col, cellAt(record, positions[i]))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// resolvePositions finds each schema column in the header.
func resolvePositions(s Schema, header []string) ([]int, error) {
	headerIdx := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, seen := headerIdx[key]; !seen {
			headerIdx[key] = i
		}
	}

	positions := make([]int, len(s.Columns))
	var missing []string
	for i, col := range s.Columns {
		positions[i] = -1
		for _, h := range col.headers() {
			if pos, ok := headerIdx[h]; ok {
				positions[i] = pos
				break
			}
		}
		if positions[i] < 0 {
			missing = append(missing, col.Header)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Schema: s.Key, Missing: missing}
	}
	return positions, nil
}

// normalizeCell converts one raw cell for a column.
func normalizeCell(col Column, raw string) any {
	raw = CleanCell(raw)

	if col.Kind == KindTimestamp {
		if t, ok := ParseTimestamp(raw); ok {
			return t
		}
		return nil
	}

	if raw == "" {
		return Placeholder
	}
	return Truncate(raw, MaxCellLength)
}

func cellAt(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return record[pos]
}
