// Package i18n holds the supported-language registry and the structured
// translation tables used when resolving board content for display.
package i18n

// Language is a supported UI/content language code.
type Language string

const (
	English    Language = "en"
	Spanish    Language = "es"
	German     Language = "de"
	French     Language = "fr"
	Italian    Language = "it"
	Portuguese Language = "pt"
	Tagalog    Language = "tl"
)

// Default is the canonical content language; all template text is authored in it.
const Default = English

// Info describes one supported language.
type Info struct {
	Code Language `json:"code"`
	// Label is the language's self-described display name.
	Label string `json:"label"`
	// VoiceLocale is the locale hint passed to the speech synthesizer.
	VoiceLocale string `json:"voiceLocale"`
}

// registry is the fixed set of supported languages. The synthesizer commonly
// expects fil-PH for Tagalog.
var registry = []Info{
	{Code: English, Label: "English", VoiceLocale: "en-US"},
	{Code: Spanish, Label: "Español (Spanish)", VoiceLocale: "es-ES"},
	{Code: German, Label: "Deutsch (German)", VoiceLocale: "de-DE"},
	{Code: French, Label: "Français (French)", VoiceLocale: "fr-FR"},
	{Code: Italian, Label: "Italiano (Italian)", VoiceLocale: "it-IT"},
	{Code: Portuguese, Label: "Português (Portuguese)", VoiceLocale: "pt-BR"},
	{Code: Tagalog, Label: "Tagalog (Filipino)", VoiceLocale: "fil-PH"},
}

// Supported returns the language registry in display order.
func Supported() []Info {
	out := make([]Info, len(registry))
	copy(out, registry)
	return out
}

// ByCode looks up a language by its code.
func ByCode(code Language) (Info, bool) {
	for _, info := range registry {
		if info.Code == code {
			return info, true
		}
	}
	return Info{}, false
}

// Normalize maps an arbitrary stored code onto a supported language,
// falling back to the default for anything unknown.
func Normalize(code Language) Language {
	if _, ok := ByCode(code); ok {
		return code
	}
	return Default
}

// VoiceLocale returns the synthesis locale for a language, defaulting to en-US.
func VoiceLocale(code Language) string {
	if info, ok := ByCode(code); ok {
		return info.VoiceLocale
	}
	return "en-US"
}
