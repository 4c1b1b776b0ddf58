package mapper

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/lexicon"
)

// Mapper turns free-text prompts into parameter sets using a lexicon.
// A Mapper holds no per-call state and is safe for concurrent use.
type Mapper struct {
	lex    *lexicon.Lexicon
	logger *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper) error

// WithLexicon replaces the built-in lexicon.
// The lexicon is validated when the mapper is constructed.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(m *Mapper) error {
		if lex == nil {
			return ErrLexiconRequired
		}
		m.lex = lex
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// New creates a mapper over lexicon.Default unless WithLexicon is given.
func New(opts ...Option) (*Mapper, error) {
	m := &Mapper{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.lex == nil {
		m.lex = lexicon.Default()
	}
	if err := m.lex.Validate(); err != nil {
		return nil, fmt.Errorf("mapper: %w", err)
	}

	return m, nil
}

// Lexicon returns the tables the mapper reads.
func (m *Mapper) Lexicon() *lexicon.Lexicon {
	return m.lex
}

// Analysis is the full result of inspecting one prompt.
type Analysis struct {
	Prompt string
	Tokens []string

	// Category is the detected category or the lexicon default.
	Category string
	// CategoryDetected is false when Category is the fallback.
	CategoryDetected bool

	Gender     core.Gender
	Parameters core.ParameterSet
}

// Analyze maps a prompt to parameter activations. Values are not clamped;
// the applier caps them when setting.
func (m *Mapper) Analyze(prompt string) core.ParameterSet {
	return m.Inspect(prompt).Parameters
}

// Inspect analyzes a prompt and returns the intermediate results along with
// the parameter set.
func (m *Mapper) Inspect(prompt string) *Analysis {
	tokens := Tokenize(prompt)
	category, detected := m.detectCategory(tokens)

	a := &Analysis{
		Prompt:           prompt,
		Tokens:           tokens,
		Category:         category,
		CategoryDetected: detected,
		Gender:           m.detectGender(tokens),
		Parameters:       core.ParameterSet{},
	}

	if detected {
		a.Parameters[m.lex.CategoryParameter(category)] = 1.0
	}
	m.compounds(tokens, a.Parameters)
	m.traits(tokens, category, a.Parameters)
	m.features(tokens, category, a.Parameters)

	m.logger.Debug("prompt analyzed",
		"prompt", prompt,
		"category", category,
		"gender", a.Gender,
		"parameters", len(a.Parameters))

	return a
}

// DetectCategory returns the category a prompt names and whether one was
// found. The lexicon default is returned when none is.
func (m *Mapper) DetectCategory(prompt string) (string, bool) {
	return m.detectCategory(Tokenize(prompt))
}

// DetectGender returns the gender named first in a prompt, or the lexicon
// default.
func (m *Mapper) DetectGender(prompt string) core.Gender {
	return m.detectGender(Tokenize(prompt))
}

func (m *Mapper) detectCategory(tokens []string) (string, bool) {
	for i, tok := range tokens {
		if i+1 < len(tokens) {
			if category, ok := m.lex.Category(Join(tok, tokens[i+1])); ok {
				return category, true
			}
		}
		if category, ok := m.lex.Category(tok); ok {
			return category, true
		}
	}
	return m.lex.DefaultCategory, false
}

func (m *Mapper) detectGender(tokens []string) core.Gender {
	for _, tok := range tokens {
		if slices.Contains(m.lex.Genders.Female, tok) {
			return core.GenderFemale
		}
		if slices.Contains(m.lex.Genders.Male, tok) {
			return core.GenderMale
		}
	}
	return m.lex.Genders.Default
}

// compounds emits whole-body keywords. A keyword directly followed by a body
// part word only affects that part; otherwise every compound part is driven.
func (m *Mapper) compounds(tokens []string, out core.ParameterSet) {
	var order []string
	restricted := make(map[string][]string)

	for i, tok := range tokens {
		if _, ok := m.lex.Compounds[tok]; !ok {
			continue
		}
		if !slices.Contains(order, tok) {
			order = append(order, tok)
		}
		if i+1 < len(tokens) {
			restricted[tok] = append(restricted[tok], m.partsNamed(tokens[i+1])...)
		}
	}

	for _, keyword := range order {
		parts := m.lex.CompoundParts
		if len(restricted[keyword]) > 0 {
			parts = restricted[keyword]
		}
		for _, effect := range m.lex.Compounds[keyword] {
			for _, part := range parts {
				out[strings.ReplaceAll(effect.Template, lexicon.PartPlaceholder, part)] = effect.Value
			}
		}
	}
}

// partsNamed returns the compound parts with a name segment matching word.
// "arm" matches Arms_Upperarm and Arms_Forearm through the plural segment.
func (m *Mapper) partsNamed(word string) []string {
	var parts []string
	for _, part := range m.lex.CompoundParts {
		for _, segment := range strings.Split(strings.ToLower(part), "_") {
			if segment == word || segment == word+"s" {
				parts = append(parts, part)
				break
			}
		}
	}
	return parts
}

// traits emits the feature bundles implied by descriptive words. A trait word
// directly before a feature noun is read as a modifier and skipped here. A
// negated trait ("not intelligent", "without very strong") emits nothing.
func (m *Mapper) traits(tokens []string, category string, out core.ParameterSet) {
	for i, tok := range tokens {
		trait := tok
		if canonical, ok := m.lex.Synonyms[tok]; ok {
			trait = canonical
		}
		effects, ok := m.lex.Traits[trait]
		if !ok {
			continue
		}
		if i+1 < len(tokens) && m.lex.IsFeature(tokens[i+1]) {
			continue
		}
		if m.negated(tokens, i) {
			continue
		}
		for _, effect := range effects {
			templates, ok := m.lex.Modifier(effect.Feature, effect.Modifier)
			if !ok {
				continue
			}
			for _, name := range templates.Expand(category) {
				out[name] = effect.Value
			}
		}
	}
}

// negated reports whether tokens[i] is preceded by a negation word, allowing
// one intensity word in between.
func (m *Mapper) negated(tokens []string, i int) bool {
	j := i - 1
	if j >= 0 {
		if _, ok := m.lex.Intensity(tokens[j]); ok {
			j--
		}
	}
	return j >= 0 && m.lex.IsNegation(tokens[j])
}

// features handles "<negation>? <intensity>? <modifier> <feature>" phrases.
func (m *Mapper) features(tokens []string, category string, out core.ParameterSet) {
	at := func(i int) string {
		if i < 0 || i >= len(tokens) {
			return ""
		}
		return tokens[i]
	}

	for i, feature := range tokens {
		if !m.lex.IsFeature(feature) || i == 0 {
			continue
		}

		modifier, width := "", 0
		if i >= 2 {
			if joined := Join(at(i-2), at(i-1)); m.hasModifier(feature, joined) {
				modifier, width = joined, 2
			}
		}
		if width == 0 && m.hasModifier(feature, at(i-1)) {
			modifier, width = at(i-1), 1
		}
		if width == 0 {
			continue
		}

		value := m.lex.DefaultValue
		negationAt := i - width - 1
		if intensity, ok := m.lex.Intensity(at(i - width - 1)); ok {
			value = intensity
			negationAt = i - width - 2
		}

		if m.lex.IsNegation(at(negationAt)) {
			if opposite, ok := m.lex.Antonym(modifier); ok && m.hasModifier(feature, opposite) {
				modifier = opposite
			} else {
				value = 0.0
			}
		}

		templates, _ := m.lex.Modifier(feature, modifier)
		for _, name := range templates.Expand(category) {
			out[name] = value
		}
	}
}

func (m *Mapper) hasModifier(feature, modifier string) bool {
	_, ok := m.lex.Modifier(feature, modifier)
	return ok
}
