package content

import (
	"strings"

	"github.com/voxpad/voxpad/internal/i18n"
	"github.com/voxpad/voxpad/internal/settings"
)

// Icons binding template words to profile fields. These are semantic tags:
// they survive translation and renaming, which is what keeps injection
// working in every language.
const (
	IconUserName   = "👤"
	IconAddress    = "🏠"
	IconPhone      = "📞"
	IconAge        = "🎂"
	IconBirthday   = "🎈"
	IconAllergies  = "⚠️"
	IconDisability = "♿"
	IconEmergency  = "🚨"
	IconCaregiver  = "🤝"
)

// Memo category and slot icons. Slots are addressed by icon plus ordinal,
// never by label: labels translate, icons do not.
const (
	IconMemoCategory = "💬"
	IconMemoSlot     = "📝"
	IconMemoStarred  = "⭐"
)

// agePlaceholder is the literal token replaced by the age profile field.
const agePlaceholder = "..."

// profileValue extracts the profile field bound to an icon, or "" when the
// icon carries no binding.
func profileValue(icon string, s settings.Settings) string {
	switch icon {
	case IconUserName:
		return s.UserName
	case IconAddress:
		return s.Address
	case IconPhone:
		return s.Phone
	case IconBirthday:
		return s.Birthday
	case IconAllergies:
		return s.Allergies
	case IconDisability:
		return s.DisabilityInfo
	case IconEmergency:
		return s.EmergencyContact
	case IconCaregiver:
		return s.Caregiver
	}
	return ""
}

// Reconcile produces the displayed category list from the pristine template
// catalog, the stored/current list, and the active settings.
//
// For each current category: a genuine template match restarts from the
// template's word list (which is what makes repeated reconciliation
// idempotent), then applies language resolution, profile injection, and memo
// audio binding. Anything user-authored passes through untouched. Category
// and word counts are preserved; only text and audio fields change.
func Reconcile(templates []Category, current []Category, s settings.Settings) []Category {
	lang := i18n.Normalize(s.Language)

	out := make([]Category, 0, len(current))
	for _, cat := range current {
		tmpl, ok := Classify(cat, templates)
		if !ok {
			out = append(out, cat.Clone())
			continue
		}

		tmpl.Name = resolveCategoryName(tmpl, lang)
		for i := range tmpl.Words {
			tmpl.Words[i] = resolveWord(tmpl.Words[i], lang, s)
		}
		// Words the user appended to a system category have no template
		// entry; they ride along unchanged after the rebuilt prefix.
		for _, extra := range userAddedWords(cat, tmpl) {
			tmpl.Words = append(tmpl.Words, extra.Clone())
		}
		if tmpl.Icon == IconMemoCategory {
			bindMemoAudio(tmpl.Words, s)
		}
		out = append(out, tmpl)
	}
	return out
}

// resolveCategoryName translates a template's canonical name: external table
// first, inline override second, canonical as fallback.
func resolveCategoryName(tmpl Category, lang i18n.Language) string {
	if lang == i18n.Default {
		return tmpl.Name
	}
	if translated, ok := i18n.CategoryName(tmpl.Name, lang); ok {
		return translated
	}
	if translated, ok := tmpl.NameTranslations[lang]; ok && translated != "" {
		return translated
	}
	return tmpl.Name
}

// resolveWord applies language selection and profile injection to one
// pristine template word.
func resolveWord(w Word, lang i18n.Language, s settings.Settings) Word {
	if lang != i18n.Default {
		if translated, ok := w.LabelTranslations[lang]; ok && translated != "" {
			w.Label = translated
		}
		if translated, ok := w.SpokenTranslations[lang]; ok && translated != "" {
			w.Spoken = translated
		}
	}

	if w.Icon == IconAge {
		if age := strings.TrimSpace(s.Age); age != "" {
			substituted := strings.ReplaceAll(w.SpokenText(), agePlaceholder, age)
			w.Label = strings.ReplaceAll(w.Label, agePlaceholder, age)
			w.Spoken = substituted
		}
		return w
	}

	if value := profileValue(w.Icon, s); strings.TrimSpace(value) != "" {
		w.Spoken = w.SpokenText() + " " + value
	}
	return w
}

// userAddedWords returns the words in a stored system category beyond the
// template's own entries. New words are always appended after the template
// prefix, so everything past the template word count is user-authored.
func userAddedWords(cat Category, tmpl Category) []Word {
	if len(cat.Words) <= len(tmpl.Words) {
		return nil
	}
	return cat.Words[len(tmpl.Words):]
}

// bindMemoAudio attaches recorded memo payloads to the memo-slot words in
// place. Slot words keep their position when unrecorded; an empty Recording
// makes selection a silent no-op at the consuming layer.
func bindMemoAudio(words []Word, s settings.Settings) {
	slot := 0
	for i := range words {
		switch words[i].Icon {
		case IconMemoSlot:
			slot++
			switch slot {
			case 1:
				words[i].Recording = s.Memo1Audio
			case 2:
				words[i].Recording = s.Memo2Audio
			}
		case IconMemoStarred:
			words[i].Recording = s.ImportantMemoAudio
		}
	}
}
