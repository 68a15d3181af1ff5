package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by both the original headers and their canonical
// aliases. The canonical alias never overrides a value already present under
// the same key.
type Row map[string]string

// Get returns the first non-empty value among the given keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Has reports whether the row carries a value (possibly empty) for the key.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Rows reads the first worksheet of an xlsx document. Row 1 is treated as
// headers; rows where every cell is empty or whitespace are skipped.
func Rows(reader io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if allEmpty(cells) {
			continue
		}

		row := make(Row, 2*len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			row[h] = cellAt(cells, i)
		}
		for i, h := range headers {
			canon := CanonicalHeader(h)
			if canon == "" {
				continue
			}
			if _, exists := row[canon]; !exists {
				row[canon] = cellAt(cells, i)
			}
		}
		out = append(out, row)
	}

	return out, nil
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
