package content

import "github.com/voxpad/voxpad/internal/i18n"

// Classify decides whether a stored category is a system category (template-
// derived) or user-authored. The icon selects the candidate template, and
// the name must then corroborate it: an exact match against the template's
// canonical name, any entry in the external translation table, or any inline
// override. A user category that merely reuses a template's emoji keeps its
// own content; when in doubt the user's data wins.
//
// Returns a deep copy of the matched template so reconciliation always
// starts from pristine words.
func Classify(cat Category, templates []Category) (Category, bool) {
	for _, tmpl := range templates {
		if tmpl.Icon != cat.Icon {
			continue
		}
		if nameMatchesTemplate(cat.Name, tmpl) {
			return tmpl.Clone(), true
		}
	}
	return Category{}, false
}

// nameMatchesTemplate reports whether name is a known variant of the
// template's name in any supported language.
func nameMatchesTemplate(name string, tmpl Category) bool {
	for _, variant := range i18n.KnownCategoryNames(tmpl.Name) {
		if name == variant {
			return true
		}
	}
	for _, variant := range tmpl.NameTranslations {
		if name == variant {
			return true
		}
	}
	return false
}
