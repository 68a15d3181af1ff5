package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// PlanExportRow is one weekday line in a single-plan export.
type PlanExportRow struct {
	DayName    string
	HijriDate  string
	GregDate   string
	SchoolName string
	VisitType  string
}

// WeekExportRow is one plan-day line in a whole-week export.
type WeekExportRow struct {
	SupervisorName string
	DayName        string
	SchoolName     string
	VisitType      string
}

var planExportHeaders = []string{"اليوم", "التاريخ (هجري)", "التاريخ (ميلادي)", "المدرسة", "نوع الزيارة"}

var weekExportHeaders = []string{"المشرف", "اليوم", "المدرسة", "نوع الزيارة"}

// BuildPlanWorkbook renders one supervisor's weekly plan as a styled
// right-to-left worksheet: a merged title row, a supervisor line, then the
// five weekday rows.
func BuildPlanWorkbook(weekNo int, supervisorName, supervisorNID string, rows []PlanExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SafeSheetName(fmt.Sprintf("الأسبوع %d", weekNo))
	if err := renameActiveSheet(f, sheet); err != nil {
		return nil, err
	}
	rtl := true
	_ = f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl})

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "CBD5E1"},
		{Type: "right", Style: 1, Color: "CBD5E1"},
		{Type: "top", Style: 1, Color: "CBD5E1"},
		{Type: "bottom", Style: 1, Color: "CBD5E1"},
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E8F5E9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F1F5F9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(planExportHeaders))

	_ = f.MergeCell(sheet, "A1", lastCol+"1")
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("خطة الأسبوع رقم %d", weekNo))
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	_ = f.MergeCell(sheet, "A2", lastCol+"2")
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("المشرف: %s — الهوية: %s", supervisorName, supervisorNID))
	_ = f.SetCellStyle(sheet, "A2", lastCol+"2", subtitleStyle)

	const headerRow = 4
	for i, h := range planExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheet, cell, h)
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRow)
	lastHeader, _ := excelize.CoordinatesToCellName(len(planExportHeaders), headerRow)
	_ = f.SetCellStyle(sheet, firstHeader, lastHeader, headerStyle)

	for i, row := range rows {
		values := []string{row.DayName, row.HijriDate, row.GregDate, row.SchoolName, row.VisitType}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			_ = f.SetCellValue(sheet, cell, v)
		}
		first, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		last, _ := excelize.CoordinatesToCellName(len(values), headerRow+1+i)
		_ = f.SetCellStyle(sheet, first, last, cellStyle)
	}

	widths := []float64{16, 18, 18, 55, 18}
	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, w)
	}
	_ = f.SetRowHeight(sheet, 1, 28)
	_ = f.SetRowHeight(sheet, 2, 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildWeekWorkbook renders every plan day of one week, all supervisors
// included, as a flat right-to-left table.
func BuildWeekWorkbook(weekNo int, rows []WeekExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SafeSheetName(fmt.Sprintf("الأسبوع %d", weekNo))
	if err := renameActiveSheet(f, sheet); err != nil {
		return nil, err
	}
	rtl := true
	_ = f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl})

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F1F5F9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range weekExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(weekExportHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range rows {
		values := []string{row.SupervisorName, row.DayName, row.SchoolName, row.VisitType}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	widths := []float64{32, 14, 55, 18}
	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func renameActiveSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	return nil
}
