package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// SchemaError reports required columns missing from a source header. No safe
// default exists for a missing column, so ingestion fails outright.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source %s is missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// table is a parsed CSV: a column index and the de-duplicated data rows.
type table struct {
	columns map[string]int
	rows    [][]string

	read       int // data rows in the file
	duplicates int // exact duplicate rows dropped
}

// readTable parses a semicolon-delimited export. Header names are trimmed;
// exact duplicate rows are dropped and counted. Rows shorter than the header
// are padded so column lookups stay in range.
func readTable(r io.Reader, source string, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", source, err)
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Source: source, Missing: missing}
	}

	seen := map[string]bool{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", source, err)
		}
		t.read++

		for len(row) < len(header) {
			row = append(row, "")
		}
		key := strings.Join(row, "\x1f")
		if seen[key] {
			t.duplicates++
			continue
		}
		seen[key] = true
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// field returns the named column of a row, trimmed. Unknown optional columns
// yield the empty string.
func (t *table) field(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[i])
}
