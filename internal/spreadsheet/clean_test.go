package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigitsNormalizesNationalIDs(t *testing.T) {
	require.Equal(t, "1020103717", Digits("102-0103717 "))
	require.Equal(t, "70228", Digits("70228.0"))
	require.Equal(t, "702281", Digits("70228-1"))
	require.Equal(t, "", Digits("   "))
	require.Equal(t, "", Digits("abc"))
}

func TestCodePreservesLeadingLetters(t *testing.T) {
	require.Equal(t, "M3964353", Code("M3964353"))
	require.Equal(t, "M3964353", Code("m3964353"))
	require.Equal(t, "703081", Code("70308-1"))
	require.Equal(t, "70228", Code("70228.0"))
	require.Equal(t, "", Code(""))
}

func TestParseBoolVocabulary(t *testing.T) {
	for _, truthy := range []string{"1", "true", "YES", "y", "نعم"} {
		require.True(t, ParseBool(truthy), truthy)
	}
	for _, falsy := range []string{"0", "false", "No", "n", "لا"} {
		require.False(t, ParseBool(falsy), falsy)
	}
	// absence of a flag implies active
	require.True(t, ParseBool(""))
	require.True(t, ParseBool("maybe"))
}

func TestCanonicalHeaderBilingual(t *testing.T) {
	require.Equal(t, FieldStatCode, CanonicalHeader("الرقم الإحصائي"))
	require.Equal(t, FieldStatCode, CanonicalHeader("Stat_Code"))
	require.Equal(t, FieldStatCode, CanonicalHeader("  stat code "))
	require.Equal(t, FieldName, CanonicalHeader("اسم المدرسة"))
	require.Equal(t, FieldNationalID, CanonicalHeader("السجل المدني"))
	require.Equal(t, FieldSupervisorNationalID, CanonicalHeader("رقم هوية المشرف"))
	require.Equal(t, FieldSupervisorName, CanonicalHeader("اسم المشرف"))
	require.Equal(t, FieldMobile, CanonicalHeader("رقم الجوال"))

	// unrecognized headers pass through trimmed
	require.Equal(t, "عمود غريب", CanonicalHeader(" عمود غريب "))
}

func TestSafeSheetNameStripsAndTruncates(t *testing.T) {
	require.Equal(t, "a-b-c", SafeSheetName("a[b]c"))
	require.Equal(t, "rejected", SafeSheetName(""))
	long := "a_very_long_importer_sheet_name_beyond_limit"
	require.Len(t, []rune(SafeSheetName(long)), 31)
}
