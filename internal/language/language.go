package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// ErrUnknownLanguage is returned for codes outside the supported table.
var ErrUnknownLanguage = errors.New("unknown language code")

// Language describes one supported target language.
type Language struct {
	Code   string // backend language code
	Name   string // human-readable name
	Locale string // OOXML run language id
}

type entry struct {
	code    string
	display string
	locale  string
}

var languages = []entry{
	{"af", "Afrikaans", "af-ZA"},
	{"am", "Amharic", "am-ET"},
	{"ar", "Arabic", "ar-SA"},
	{"bg", "Bulgarian", "bg-BG"},
	{"bn", "Bengali", "bn-IN"},
	{"bs", "Bosnian", "bs-Latn-BA"},
	{"cs", "Czech", "cs-CZ"},
	{"da", "Danish", "da-DK"},
	{"de", "German", "de-DE"},
	{"el", "Greek", "el-GR"},
	{"en", "English", "en-US"},
	{"es", "Spanish", "es-ES"},
	{"et", "Estonian", "et-EE"},
	{"fi", "Finnish", "fi-FI"},
	{"fr", "French", "fr-FR"},
	{"fr-CA", "French (Canada)", "fr-CA"},
	{"ha", "Hausa", "ha-Latn-NG"},
	{"he", "Hebrew", "he-IL"},
	{"hi", "Hindi", "hi-IN"},
	{"hr", "Croatian", "hr-HR"},
	{"hu", "Hungarian", "hu-HU"},
	{"id", "Indonesian", "id-ID"},
	{"it", "Italian", "it-IT"},
	{"ja", "Japanese", "ja-JP"},
	{"ka", "Georgian", "ka-GE"},
	{"ko", "Korean", "ko-KR"},
	{"lv", "Latvian", "lv-LV"},
	{"ms", "Malay", "ms-MY"},
	{"nl", "Dutch", "nl-NL"},
	{"no", "Norwegian", "nb-NO"},
	{"pl", "Polish", "pl-PL"},
	{"ps", "Pashto", "ps-AF"},
	{"pt", "Portuguese", "pt-BR"},
	{"ro", "Romanian", "ro-RO"},
	{"ru", "Russian", "ru-RU"},
	{"sk", "Slovak", "sk-SK"},
	{"sl", "Slovenian", "sl-SI"},
	{"so", "Somali", "so-SO"},
	{"sq", "Albanian", "sq-AL"},
	{"sr", "Serbian", "sr-Latn-CS"},
	{"sv", "Swedish", "sv-SE"},
	{"sw", "Swahili", "sw-KE"},
	{"ta", "Tamil", "ta-IN"},
	{"th", "Thai", "th-TH"},
	{"tr", "Turkish", "tr-TR"},
	{"uk", "Ukrainian", "uk-UA"},
	{"ur", "Urdu", "ur-PK"},
	{"vi", "Vietnamese", "vi-VN"},
	{"zh", "Chinese (Simplified)", "zh-SG"},
	{"zh-TW", "Chinese (Traditional)", "zh-HK"},
}

// Table is an immutable code -> Language lookup.
type Table struct {
	byCode map[string]Language
	byWord map[string]Language
}

var standard = newTable(languages)

// Standard returns the built-in table of supported languages.
func Standard() Table {
	return standard
}

func newTable(entries []entry) Table {
	t := Table{
		byCode: make(map[string]Language, len(entries)),
		byWord: make(map[string]Language, len(entries)),
	}
	for _, e := range entries {
		lang := Language{Code: e.code, Name: e.display, Locale: e.locale}
		t.byCode[strings.ToLower(e.code)] = lang
		t.byWord[strings.ToLower(e.display)] = lang
	}
	return t
}

// Lookup resolves a code (or English display name) to its table entry.
func (t Table) Lookup(code string) (Language, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Language{}, fmt.Errorf("%w: empty code", ErrUnknownLanguage)
	}
	key := strings.ToLower(Canonical(trimmed))
	if lang, ok := t.byCode[key]; ok {
		return lang, nil
	}
	if lang, ok := t.byWord[strings.ToLower(trimmed)]; ok {
		return lang, nil
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, trimmed)
}

// Contains reports whether code resolves to a table entry.
func (t Table) Contains(code string) bool {
	_, err := t.Lookup(code)
	return err == nil
}

// List returns every entry sorted by code.
func (t Table) List() []Language {
	out := make([]Language, 0, len(t.byCode))
	for _, lang := range t.byCode {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup resolves code against the standard table.
func Lookup(code string) (Language, error) {
	return standard.Lookup(code)
}

// Canonical normalises the case of a BCP 47 style code ("ZH-tw" -> "zh-TW").
// Input that does not parse as a tag is returned trimmed and unchanged.
func Canonical(code string) string {
	code = strings.TrimSpace(code)
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}
