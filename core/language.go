package tripper

import (
	"strings"
	"unicode"
)

const DefaultLanguage = "English"

// Languages are the choices offered by pickers, flag first.
var Languages = []string{
	"🇬🇧 English",
	"🇫🇷 Français",
	"🇪🇸 Español",
	"🇩🇪 Deutsch",
	"🇮🇹 Italiano",
	"🇯🇵 日本語",
	"🇨🇳 中文",
}

var languageCodes = map[string]string{
	"English":  "en",
	"Français": "fr",
	"Español":  "es",
	"Deutsch":  "de",
	"Italiano": "it",
	"日本語":      "ja",
	"中文":       "zh",
}

// LanguageName strips any flag or symbol prefix from a picker value.
func LanguageName(choice string) string {
	return strings.TrimSpace(strings.TrimLeftFunc(choice, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
}

// LanguageCode maps a picker value or language name to its short code,
// "en" when unknown.
func LanguageCode(choice string) string {
	if code, ok := languageCodes[LanguageName(choice)]; ok {
		return code
	}
	return "en"
}
