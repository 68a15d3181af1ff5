package spreadsheet

import "strings"

// Canonical field names produced by header canonicalization.
const (
	FieldStatCode             = "stat_code"
	FieldName                 = "name"
	FieldEducationType        = "education_type"
	FieldStage                = "stage"
	FieldGender               = "gender"
	FieldIsActive             = "is_active"
	FieldSchoolStatCode       = "school_stat_code"
	FieldFullName             = "full_name"
	FieldNationalID           = "national_id"
	FieldMobile               = "mobile"
	FieldSector               = "sector"
	FieldDepartment           = "department"
	FieldSupervisorNationalID = "supervisor_national_id"
	FieldSupervisorName       = "supervisor_name"
)

// headerAliases maps normalized raw headers (Arabic and English) to canonical
// field names. Lookup order matters where the same Arabic header is used by
// more than one file layout; the first registered meaning wins and importers
// consult several canonical keys to compensate.
var headerAliases = []struct {
	canon   string
	matches []string
}{
	{FieldStatCode, []string{"stat code", "الرقم الإحصائي", "الرقم الاحصائي", "رقم احصائي", "رقم المدرسة"}},
	{FieldName, []string{"name", "اسم المدرسة", "المدرسة", "school name"}},
	{FieldEducationType, []string{"education type", "نوع التعليم"}},
	{FieldStage, []string{"stage", "المرحلة"}},
	{FieldGender, []string{"gender", "الجنس"}},
	{FieldIsActive, []string{"is active", "active", "نشط", "نشطة"}},
	{FieldSchoolStatCode, []string{"school stat code", "رقم احصائي المدرسة"}},
	{FieldFullName, []string{"full name", "الاسم", "اسم المدير", "اسم المديرة", "اسم القائد", "اسم القائدة"}},
	{FieldNationalID, []string{"national id", "السجل المدني", "رقم الهوية", "الهوية", "nid"}},
	{FieldMobile, []string{"mobile", "الجوال", "رقم الجوال", "الهاتف", "phone"}},
	{FieldSector, []string{"sector", "القطاع", "قطاع المدرسة"}},
	{FieldDepartment, []string{"department", "القسم", "الإدارة"}},
	{FieldSupervisorNationalID, []string{"supervisor national id", "رقم هوية المشرف", "هوية المشرف"}},
	{FieldSupervisorName, []string{"supervisor name", "اسم المشرف", "المشرف"}},
}

var headerLookup = buildHeaderLookup()

func buildHeaderLookup() map[string]string {
	lookup := make(map[string]string)
	for _, alias := range headerAliases {
		// a canonical name always maps to itself
		self := strings.ReplaceAll(alias.canon, "_", " ")
		if _, ok := lookup[self]; !ok {
			lookup[self] = alias.canon
		}
		for _, m := range alias.matches {
			if _, ok := lookup[m]; !ok {
				lookup[m] = alias.canon
			}
		}
	}
	return lookup
}

// CanonicalHeader maps a raw column header (Arabic or English, case,
// whitespace and underscore insensitive) to its canonical field name.
// Unrecognized headers pass through trimmed, so uncatalogued columns still
// reach the rejected-rows export under their original names.
func CanonicalHeader(h string) string {
	x := strings.TrimSpace(h)
	if x == "" {
		return ""
	}
	key := strings.ToLower(x)
	key = strings.ReplaceAll(key, "ـ", "") // Arabic tatweel
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.Join(strings.Fields(key), " ")
	if canon, ok := headerLookup[key]; ok {
		return canon
	}
	return x
}
