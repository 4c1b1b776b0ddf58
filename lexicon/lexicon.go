package lexicon

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/morphit/core"
	"gopkg.in/yaml.v3"
)

// Placeholders recognised inside parameter-name templates.
const (
	EthnicityPlaceholder = "{ethnicity}"
	PartPlaceholder      = "{part}"
)

// Templates is one or more parameter-name templates selected by a modifier.
// In YAML it may be written either as a single string or as a list.
type Templates []string

// UnmarshalYAML accepts a scalar or a sequence.
func (t *Templates) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = Templates{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = Templates(list)
		return nil
	}
	return fmt.Errorf("%w: templates must be a string or a list (line %d)", ErrInvalidLexicon, value.Line)
}

// MarshalYAML writes single templates back as plain strings.
func (t Templates) MarshalYAML() (any, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}

// Expand substitutes the category into every template.
// Templates without a placeholder are returned unchanged.
func (t Templates) Expand(category string) []string {
	names := make([]string, len(t))
	for i, tmpl := range t {
		names[i] = strings.ReplaceAll(tmpl, EthnicityPlaceholder, category)
	}
	return names
}

// CompoundEffect is one parameter a whole-body keyword drives.
type CompoundEffect struct {
	Template string  `yaml:"template"`
	Value    float64 `yaml:"value"`
}

// TraitEffect is one feature/modifier pair a trait word implies.
type TraitEffect struct {
	Feature  string  `yaml:"feature"`
	Modifier string  `yaml:"modifier"`
	Value    float64 `yaml:"value"`
}

// GenderTable holds the keyword lists used to pick a character object.
type GenderTable struct {
	Default core.Gender `yaml:"default"`
	Male    []string    `yaml:"male"`
	Female  []string    `yaml:"female"`
}

// Lexicon is the full set of static tables driving prompt analysis.
// A Lexicon is treated as immutable once handed to a mapper.
type Lexicon struct {
	// DefaultCategory is substituted when the prompt names no category.
	// Capitalisation must match the shape key names.
	DefaultCategory string `yaml:"default_category"`

	// CategoryPrefix precedes the category in its activation parameter.
	CategoryPrefix string `yaml:"category_prefix"`

	// DefaultValue is used when no intensity word qualifies a modifier.
	DefaultValue float64 `yaml:"default_value"`

	Concepts      map[string]string               `yaml:"concepts"`
	Compounds     map[string][]CompoundEffect     `yaml:"compounds"`
	CompoundParts []string                        `yaml:"compound_parts"`
	Features      map[string]map[string]Templates `yaml:"features"`
	Intensities   map[string]float64              `yaml:"intensities"`

	// Antonyms maps a modifier to its opposite. An empty value means the
	// modifier has no opposite and negating it zeroes the activation.
	Antonyms  map[string]string `yaml:"antonyms"`
	Negations []string          `yaml:"negations"`

	Genders  GenderTable              `yaml:"genders"`
	Traits   map[string][]TraitEffect `yaml:"traits"`
	Synonyms map[string]string        `yaml:"synonyms"`
}

// CategoryParameter returns the activation parameter name for a category.
func (l *Lexicon) CategoryParameter(category string) string {
	return l.CategoryPrefix + category
}

// Category looks a keyword up in the concept table.
func (l *Lexicon) Category(word string) (string, bool) {
	category, ok := l.Concepts[word]
	return category, ok
}

// Intensity returns the multiplier for an intensity adverb.
func (l *Lexicon) Intensity(word string) (float64, bool) {
	value, ok := l.Intensities[word]
	return value, ok
}

// IsNegation reports whether word negates the following modifier.
func (l *Lexicon) IsNegation(word string) bool {
	return slices.Contains(l.Negations, word)
}

// IsFeature reports whether word is a feature noun.
func (l *Lexicon) IsFeature(word string) bool {
	_, ok := l.Features[word]
	return ok
}

// Modifier returns the templates a modifier selects for a feature noun.
func (l *Lexicon) Modifier(feature, modifier string) (Templates, bool) {
	templates, ok := l.Features[feature][modifier]
	return templates, ok
}

// Antonym returns the opposite of a modifier. The boolean is false when the
// modifier has no usable opposite.
func (l *Lexicon) Antonym(modifier string) (string, bool) {
	opposite, ok := l.Antonyms[modifier]
	if !ok || opposite == "" {
		return "", false
	}
	return opposite, true
}

// Categories returns every category the lexicon can produce, including the
// default, sorted and without duplicates.
func (l *Lexicon) Categories() []string {
	categories := []string{l.DefaultCategory}
	for _, category := range l.Concepts {
		categories = append(categories, category)
	}
	slices.Sort(categories)
	return slices.Compact(categories)
}

// ParameterNames enumerates every parameter name the lexicon can emit.
// The result is sorted and is used to seed character objects.
func (l *Lexicon) ParameterNames() []string {
	seen := make(map[string]struct{})
	categories := l.Categories()

	for _, category := range categories {
		seen[l.CategoryParameter(category)] = struct{}{}
	}
	for _, effects := range l.Compounds {
		for _, effect := range effects {
			for _, part := range l.CompoundParts {
				seen[strings.ReplaceAll(effect.Template, PartPlaceholder, part)] = struct{}{}
			}
		}
	}
	for _, modifiers := range l.Features {
		for _, templates := range modifiers {
			for _, category := range categories {
				for _, name := range templates.Expand(category) {
					seen[name] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
