package locale

import (
	"strings"
	"sync"

	"golang.org/x/text/language"

	"recite/internal/i18n"
)

// Locale is a language selectable as translation source or target
type Locale struct {
	ID   string `json:"localeId"`
	Name string `json:"name"`
}

// all is the full table known to the translation backends
var all = []Locale{
	{ID: "auto", Name: "Auto detect"},
	{ID: "zh-CN", Name: "Chinese (Simplified)"},
	{ID: "zh-TW", Name: "Chinese (Traditional)"},
	{ID: "zh-HK", Name: "Cantonese"},
	{ID: "en", Name: "English"},
	{ID: "en-US", Name: "English (US)"},
	{ID: "en-GB", Name: "English (UK)"},
	{ID: "ja", Name: "Japanese"},
	{ID: "ko", Name: "Korean"},
	{ID: "fr", Name: "French"},
	{ID: "de", Name: "German"},
	{ID: "es", Name: "Spanish"},
	{ID: "it", Name: "Italian"},
	{ID: "pt", Name: "Portuguese"},
	{ID: "pt-BR", Name: "Portuguese (Brazil)"},
	{ID: "ru", Name: "Russian"},
	{ID: "ar", Name: "Arabic"},
	{ID: "th", Name: "Thai"},
	{ID: "vi", Name: "Vietnamese"},
	{ID: "nl", Name: "Dutch"},
	{ID: "pl", Name: "Polish"},
	{ID: "tr", Name: "Turkish"},
	{ID: "uk", Name: "Ukrainian"},
}

// keptRegional are the region-tagged ids the backends translate distinctly
var keptRegional = map[string]bool{
	"zh-CN": true,
	"zh-TW": true,
	"zh-HK": true,
}

// TranslateLocales returns the locale allow-list, built once per process
var TranslateLocales = sync.OnceValue(func() []Locale {
	return filter(all)
})

func filter(locales []Locale) []Locale {
	var out []Locale
	for _, l := range locales {
		if strings.Contains(l.ID, "-") && !keptRegional[l.ID] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// IsSupported reports whether id is in the allow-list
func IsSupported(id string) bool {
	for _, l := range TranslateLocales() {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Valid reports whether id is "auto" or a well-formed BCP 47 tag
func Valid(id string) bool {
	if id == "auto" {
		return true
	}
	_, err := language.Parse(id)
	return err == nil
}

var apiMessages = map[string]string{
	"YouDao":   i18n.APIYouDao,
	"Google":   i18n.APIGoogle,
	"GoogleCN": i18n.APIGoogleCN,
	"BaiDu":    i18n.APIBaiDu,
}

// APIName returns the display name of a translation api, or "" if unknown
func APIName(tr *i18n.Translator, api string) string {
	id, ok := apiMessages[api]
	if !ok {
		return ""
	}
	return tr.T(id)
}
