// Package content holds the board data model, the built-in template catalog,
// and the reconciler that produces the displayed category tree from
// templates, user customizations, and settings.
package content

import "github.com/voxpad/voxpad/internal/i18n"

// Word is one tappable leaf on the board.
//
// Label is the canonical English display text and the identity key within a
// category. Icon doubles as a stable semantic tag: profile injection and
// memo binding key off it, never off translated text.
type Word struct {
	Label             string                   `json:"label" yaml:"label"`
	LabelTranslations map[i18n.Language]string `json:"labelTranslations,omitempty" yaml:"label_translations,omitempty"`

	// Spoken is the text actually vocalized/inserted when it differs from
	// the label; empty means the label is spoken as-is.
	Spoken             string                   `json:"spoken,omitempty" yaml:"spoken,omitempty"`
	SpokenTranslations map[i18n.Language]string `json:"spokenTranslations,omitempty" yaml:"spoken_translations,omitempty"`

	Icon string `json:"icon" yaml:"icon"`

	// Recording is a base64 audio payload bound during reconciliation.
	// When present, selecting the word plays it instead of synthesizing.
	// Never persisted with the category list; the audio lives in settings.
	Recording string `json:"-" yaml:"-"`
}

// SpokenText returns the text contributed to the sentence: the spoken phrase
// when set, otherwise the label.
func (w Word) SpokenText() string {
	if w.Spoken != "" {
		return w.Spoken
	}
	return w.Label
}

// Clone returns a deep copy of the word.
func (w Word) Clone() Word {
	out := w
	out.LabelTranslations = cloneMap(w.LabelTranslations)
	out.SpokenTranslations = cloneMap(w.SpokenTranslations)
	return out
}

// Category is a named, colored, icon-tagged ordered word list. For system
// (template-derived) categories the icon is the identity key; the name
// changes under translation and customization.
type Category struct {
	Name             string                   `json:"name" yaml:"name"`
	NameTranslations map[i18n.Language]string `json:"nameTranslations,omitempty" yaml:"name_translations,omitempty"`

	// Phrase is auto-appended to the sentence when the category itself is
	// opened. Literal pass-through: no translation or profile injection.
	Phrase string `json:"phrase,omitempty" yaml:"phrase,omitempty"`

	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
	Words []Word `json:"words" yaml:"words"`
}

// Clone returns a deep copy of the category and its words.
func (c Category) Clone() Category {
	out := c
	out.NameTranslations = cloneMap(c.NameTranslations)
	out.Words = make([]Word, len(c.Words))
	for i, w := range c.Words {
		out.Words[i] = w.Clone()
	}
	return out
}

// CloneAll deep-copies a category list.
func CloneAll(categories []Category) []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.Clone()
	}
	return out
}

func cloneMap(m map[i18n.Language]string) map[i18n.Language]string {
	if m == nil {
		return nil
	}
	out := make(map[i18n.Language]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
