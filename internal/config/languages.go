package config

// Language is one entry of the supported-language table.
type Language struct {
	Code string
	Name string
}

// languages is the fixed table offered to guests during onboarding.
// The order defines the keyboard layout; never mutated at runtime.
var languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "zh", Name: "Chinese"},
	{Code: "ru", Name: "Russian"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
}

// SupportedLanguages returns a copy of the language table.
func SupportedLanguages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LanguageName resolves a code to its display name.
func LanguageName(code string) (string, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l.Name, true
		}
	}
	return "", false
}
