package spreadsheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RejectedEntry is one skipped import row as it goes into the rejected
// workbook: the importer it came from, the reason, and the original cells.
type RejectedEntry struct {
	Importer string
	Reason   string
	Row      map[string]string
}

// preferredRejectedColumns come first in every rejected sheet so the fields a
// manager needs to fix are visible without scrolling.
var preferredRejectedColumns = []string{
	"reason",
	FieldStatCode,
	FieldSchoolStatCode,
	FieldNationalID,
	FieldSupervisorNationalID,
	FieldSupervisorName,
	FieldFullName,
	FieldName,
	FieldMobile,
}

// BuildRejectedWorkbook groups rejected rows by importer into one sheet per
// source and returns the serialized xlsx bytes.
func BuildRejectedWorkbook(entries []RejectedEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"EEF2FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build header style: %w", err)
	}

	groups := make(map[string][]RejectedEntry)
	order := make([]string, 0)
	for _, e := range entries {
		src := e.Importer
		if src == "" {
			src = "rejected"
		}
		if _, seen := groups[src]; !seen {
			order = append(order, src)
		}
		groups[src] = append(groups[src], e)
	}

	for _, src := range order {
		rows := groups[src]
		sheet := SafeSheetName(src)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}

		cols := rejectedColumns(rows)
		for i, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, col); err != nil {
				return nil, err
			}
			name, _ := excelize.ColumnNumberToName(i + 1)
			width := float64(len(col) + 2)
			if width < 12 {
				width = 12
			}
			if width > 42 {
				width = 42
			}
			_ = f.SetColWidth(sheet, name, name, width)
		}
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		_ = f.SetCellStyle(sheet, first, last, headerStyle)

		for rowIdx, e := range rows {
			for colIdx, col := range cols {
				var value string
				if col == "reason" {
					value = e.Reason
				} else {
					value = e.Row[col]
				}
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return nil, err
				}
			}
		}

		_ = f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	// the default sheet only survives when no rows were rejected at all
	if len(order) > 0 {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rejectedColumns(rows []RejectedEntry) []string {
	seen := make(map[string]bool)
	for _, e := range rows {
		for k := range e.Row {
			seen[k] = true
		}
	}

	cols := make([]string, 0, len(seen)+1)
	cols = append(cols, "reason")
	for _, c := range preferredRejectedColumns[1:] {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}

	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// SafeSheetName strips characters Excel forbids in sheet names and enforces
// the 31-character limit.
func SafeSheetName(name string) string {
	replacer := strings.NewReplacer("[", "-", "]", "-", "*", "-", "?", "-", "/", "-", "\\", "-", ":", "-")
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		name = "rejected"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
