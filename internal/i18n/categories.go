package i18n

// Names is a structured per-language translation record for one string.
type Names map[Language]string

// categoryNames maps canonical (English) category names to their known
// translations. This is the external translation table consulted before any
// inline per-language override carried on the category itself.
var categoryNames = map[string]Names{
	"Basics": {
		Spanish:    "Básicos",
		German:     "Grundlagen",
		French:     "Essentiels",
		Italian:    "Base",
		Portuguese: "Básicos",
		Tagalog:    "Mga Pangunahin",
	},
	"Feelings": {
		Spanish:    "Sentimientos",
		German:     "Gefühle",
		French:     "Sentiments",
		Italian:    "Sentimenti",
		Portuguese: "Sentimentos",
		Tagalog:    "Damdamin",
	},
	"Needs": {
		Spanish:    "Necesidades",
		German:     "Bedürfnisse",
		French:     "Besoins",
		Italian:    "Bisogni",
		Portuguese: "Necessidades",
		Tagalog:    "Mga Pangangailangan",
	},
	"Food & Drink": {
		Spanish:    "Comida y Bebida",
		German:     "Essen & Trinken",
		French:     "Nourriture et Boisson",
		Italian:    "Cibo e Bevande",
		Portuguese: "Comida e Bebida",
		Tagalog:    "Pagkain at Inumin",
	},
	"People": {
		Spanish:    "Personas",
		German:     "Leute",
		French:     "Personnes",
		Italian:    "Persone",
		Portuguese: "Pessoas",
		Tagalog:    "Mga Tao",
	},
	"Places": {
		Spanish:    "Lugares",
		German:     "Orte",
		French:     "Lieux",
		Italian:    "Luoghi",
		Portuguese: "Lugares",
		Tagalog:    "Mga Lugar",
	},
	"My Information": {
		Spanish:    "Mi Información",
		German:     "Meine Informationen",
		French:     "Mes Informations",
		Italian:    "Le Mie Informazioni",
		Portuguese: "Minhas Informações",
		Tagalog:    "Aking Impormasyon",
	},
	"Saved Spoken Memos": {
		Spanish:    "Memos Guardados",
		German:     "Gespeicherte Memos",
		French:     "Mémos Enregistrés",
		Italian:    "Memo Salvati",
		Portuguese: "Memorandos Salvos",
		Tagalog:    "Mga Naka-save na Memo",
	},
}

// CategoryName returns the translated name for a canonical category name,
// reporting whether the table holds an entry for that language.
func CategoryName(canonical string, lang Language) (string, bool) {
	names, ok := categoryNames[canonical]
	if !ok {
		return "", false
	}
	translated, ok := names[lang]
	return translated, ok
}

// KnownCategoryNames returns every name variant the table knows for a
// canonical category name, including the canonical name itself. Used when
// deciding whether a stored category is a renamed system category or a
// user-authored one.
func KnownCategoryNames(canonical string) []string {
	variants := []string{canonical}
	for _, translated := range categoryNames[canonical] {
		variants = append(variants, translated)
	}
	return variants
}
