package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for rowIdx, row := range cells {
		for colIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestRowsCanonicalizesHeaders(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"اسم المدرسة", "الرقم الإحصائي", "نوع التعليم"},
		{"مدرسة الأمل", "70228", "عام"},
	})

	rows, err := Rows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// both the original Arabic key and the canonical alias resolve
	require.Equal(t, "مدرسة الأمل", rows[0]["اسم المدرسة"])
	require.Equal(t, "مدرسة الأمل", rows[0].Get(FieldName))
	require.Equal(t, "70228", rows[0].Get(FieldStatCode))
	require.Equal(t, "عام", rows[0].Get(FieldEducationType))
}

func TestRowsSkipsBlankRows(t *testing.T) {
	reader := buildWorkbook(t, [][]interface{}{
		{"name", "stat_code"},
		{"", "  "},
		{"school one", "100"},
		{},
		{"school two", "200"},
	})

	rows, err := Rows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "school one", rows[0].Get(FieldName))
	require.Equal(t, "school two", rows[1].Get(FieldName))
}

func TestRowsCanonicalAliasNeverOverridesOriginal(t *testing.T) {
	// the sheet already carries a literal "name" column next to an Arabic
	// school-name column that canonicalizes to the same key
	reader := buildWorkbook(t, [][]interface{}{
		{"name", "اسم المدرسة"},
		{"literal", "عربي"},
	})

	rows, err := Rows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "literal", rows[0].Get(FieldName))
	require.Equal(t, "عربي", rows[0]["اسم المدرسة"])
}

func TestRowsEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := Rows(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestBuildRejectedWorkbookGroupsByImporter(t *testing.T) {
	entries := []RejectedEntry{
		{Importer: "assignments", Reason: "المشرف غير موجود: 1020103717", Row: map[string]string{FieldSupervisorNationalID: "1020103717"}},
		{Importer: "assignments", Reason: "نقص بيانات", Row: map[string]string{FieldSchoolStatCode: "70228"}},
		{Importer: "schools_boys", Reason: "نقص الرقم الإحصائي أو الاسم", Row: map[string]string{FieldName: "مدرسة"}},
	}

	data, err := BuildRejectedWorkbook(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Contains(t, sheets, "assignments")
	require.Contains(t, sheets, "schools_boys")

	rows, err := f.GetRows("assignments")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "reason", rows[0][0])
	require.Contains(t, rows[1], "المشرف غير موجود: 1020103717")
	require.Contains(t, rows[1], "1020103717")
}

func TestBuildPlanWorkbookLayout(t *testing.T) {
	rows := []PlanExportRow{
		{DayName: "الأحد", HijriDate: "1447/03/01", GregDate: "2025-08-24", SchoolName: "مدرسة الأمل", VisitType: "حضوري"},
		{DayName: "الإثنين", HijriDate: "1447/03/02", GregDate: "2025-08-25", SchoolName: "—", VisitType: "بدون زيارة مدرسية"},
	}

	data, err := BuildPlanWorkbook(3, "سالم العتيبي", "1020103717", rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetList()[0]
	require.Equal(t, "الأسبوع 3", sheet)

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	require.Equal(t, "خطة الأسبوع رقم 3", title)

	day, err := f.GetCellValue(sheet, "A5")
	require.NoError(t, err)
	require.Equal(t, "الأحد", day)

	school, err := f.GetCellValue(sheet, "D5")
	require.NoError(t, err)
	require.Equal(t, "مدرسة الأمل", school)
}
