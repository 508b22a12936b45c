package sheet

import "strings"

// Lang selects which localized column set is read from a sheet.
type Lang string

const (
	LangES Lang = "es"
	LangEN Lang = "en"
)

// ParseLang maps a stored language code to a Lang, defaulting to Spanish.
func ParseLang(code string) Lang {
	if strings.EqualFold(strings.TrimSpace(code), string(LangEN)) {
		return LangEN
	}
	return LangES
}

// Record is one sheet row, keyed by header name. Values may be empty;
// a missing header simply yields an empty field, never an error.
type Record map[string]string

// Get returns the trimmed value of a field.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Localized returns the value of a per-language field, following the
// sheet convention of suffixed headers (title_es, title_en, ...).
func (r Record) Localized(field string, lang Lang) string {
	return r.Get(field + "_" + string(lang))
}
