package domain

import "slices"

// Default catalog values.
const (
	DefaultModel          = "gemma-3-27b-it"
	DefaultTargetLanguage = "Russian"
)

// Catalog is the immutable set of models and languages offered by the tools.
// It is built once at startup; accessors return copies.
type Catalog struct {
	models              []string
	mainLanguages       []string
	additionalLanguages []string
	defaultModel        string
	defaultLanguage     string
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return NewCatalog(
		[]string{"gemma-3-27b-it", "gemini-2.5-flash"},
		[]string{"Russian", "English", "German", "Greek"},
		[]string{
			"Arabic", "Bulgarian", "Catalan", "Chinese", "Croatian", "Czech",
			"Dutch", "Finnish", "French", "Hindi", "Hungarian", "Italian",
			"Japanese", "Korean", "Latin", "Norwegian", "Polish", "Portuguese",
			"Serbian", "Slovak", "Spanish", "Swedish", "Thai", "Turkish",
			"Ukrainian", "Vietnamese",
		},
		DefaultModel,
		DefaultTargetLanguage,
	)
}

// NewCatalog builds a catalog. Empty defaults fall back to the first entry.
func NewCatalog(models, mainLanguages, additionalLanguages []string, defaultModel, defaultLanguage string) Catalog {
	c := Catalog{
		models:              slices.Clone(models),
		mainLanguages:       slices.Clone(mainLanguages),
		additionalLanguages: slices.Clone(additionalLanguages),
		defaultModel:        defaultModel,
		defaultLanguage:     defaultLanguage,
	}
	if c.defaultModel == "" && len(c.models) > 0 {
		c.defaultModel = c.models[0]
	}
	if c.defaultLanguage == "" && len(c.mainLanguages) > 0 {
		c.defaultLanguage = c.mainLanguages[0]
	}
	return c
}

// Models returns the selectable model identifiers.
func (c Catalog) Models() []string { return slices.Clone(c.models) }

// Languages returns main languages followed by additional ones.
func (c Catalog) Languages() []string {
	return slices.Concat(c.mainLanguages, c.additionalLanguages)
}

// MainLanguages returns the languages shown as quick picks.
func (c Catalog) MainLanguages() []string { return slices.Clone(c.mainLanguages) }

// AdditionalLanguages returns the languages listed after the main ones.
func (c Catalog) AdditionalLanguages() []string { return slices.Clone(c.additionalLanguages) }

// DefaultModel returns the model selected when a tool starts.
func (c Catalog) DefaultModel() string { return c.defaultModel }

// DefaultLanguage returns the translation target selected when a tool starts.
func (c Catalog) DefaultLanguage() string { return c.defaultLanguage }

// HasModel reports whether m is a known model.
func (c Catalog) HasModel(m string) bool { return slices.Contains(c.models, m) }

// HasLanguage reports whether l is a known language.
func (c Catalog) HasLanguage(l string) bool {
	return slices.Contains(c.mainLanguages, l) || slices.Contains(c.additionalLanguages, l)
}

// NextModel returns the model after current, wrapping around.
func (c Catalog) NextModel(current string) string { return next(c.models, current) }

// NextLanguage returns the language after current, wrapping around.
func (c Catalog) NextLanguage(current string) string { return next(c.Languages(), current) }

func next(list []string, current string) string {
	if len(list) == 0 {
		return current
	}
	i := slices.Index(list, current)
	return list[(i+1)%len(list)]
}
