// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lexicon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/poiesic/morphit/core"
	"gopkg.in/yaml.v3"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// LoadFile reads a YAML lexicon override from path and layers it over the
// built-in tables. Top-level maps merge key by key; a feature entry in the
// file replaces the built-in entry for that feature wholesale. Lists replace
// their defaults. The merged lexicon is validated before it is returned.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Parse layers a YAML document over Default and validates the result.
// An empty document yields the defaults.
func Parse(data []byte) (*Lexicon, error) {
	lex := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(lex); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLexicon, err)
	}

	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Validate checks that the tables are internally consistent.
func (l *Lexicon) Validate() error {
	if strings.TrimSpace(l.DefaultCategory) == "" {
		return fmt.Errorf("%w: default_category is required", ErrInvalidLexicon)
	}
	if strings.TrimSpace(l.CategoryPrefix) == "" {
		return fmt.Errorf("%w: category_prefix is required", ErrInvalidLexicon)
	}
	if l.DefaultValue <= 0 || l.DefaultValue > 1 {
		return fmt.Errorf("%w: default_value must be in (0, 1], got %v", ErrInvalidLexicon, l.DefaultValue)
	}
	if err := core.ValidateGender(l.Genders.Default); err != nil {
		return fmt.Errorf("%w: genders.default: %w", ErrInvalidLexicon, err)
	}

	for word, category := range l.Concepts {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: concept %q maps to an empty category", ErrInvalidLexicon, word)
		}
	}

	for word, value := range l.Intensities {
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: intensity %q must be in [0, 1], got %v", ErrInvalidLexicon, word, value)
		}
	}

	for keyword, effects := range l.Compounds {
		for _, effect := range effects {
			if err := checkTemplate(effect.Template, PartPlaceholder); err != nil {
				return fmt.Errorf("%w: compound %q: %w", ErrInvalidLexicon, keyword, err)
			}
			if effect.Value < 0 || effect.Value > 1 {
				return fmt.Errorf("%w: compound %q value must be in [0, 1], got %v", ErrInvalidLexicon, keyword, effect.Value)
			}
		}
	}
	if len(l.Compounds) > 0 && len(l.CompoundParts) == 0 {
		return fmt.Errorf("%w: compounds defined without compound_parts", ErrInvalidLexicon)
	}

	modifiers := make(map[string]struct{})
	for feature, table := range l.Features {
		if len(table) == 0 {
			return fmt.Errorf("%w: feature %q has no modifiers", ErrInvalidLexicon, feature)
		}
		for modifier, templates := range table {
			if len(templates) == 0 {
				return fmt.Errorf("%w: feature %q modifier %q has no templates", ErrInvalidLexicon, feature, modifier)
			}
			for _, tmpl := range templates {
				if err := checkTemplate(tmpl, EthnicityPlaceholder); err != nil {
					return fmt.Errorf("%w: feature %q modifier %q: %w", ErrInvalidLexicon, feature, modifier, err)
				}
			}
			modifiers[modifier] = struct{}{}
		}
	}

	for modifier, opposite := range l.Antonyms {
		if opposite == "" {
			continue
		}
		if _, ok := modifiers[opposite]; !ok {
			return fmt.Errorf("%w: antonym of %q is %q, which no feature uses", ErrInvalidLexicon, modifier, opposite)
		}
	}

	for trait, effects := range l.Traits {
		for _, effect := range effects {
			if _, ok := l.Modifier(effect.Feature, effect.Modifier); !ok {
				return fmt.Errorf("%w: trait %q refers to unknown %s/%s", ErrInvalidLexicon, trait, effect.Feature, effect.Modifier)
			}
			if effect.Value < 0 || effect.Value > 1 {
				return fmt.Errorf("%w: trait %q value must be in [0, 1], got %v", ErrInvalidLexicon, trait, effect.Value)
			}
		}
	}
	for word, trait := range l.Synonyms {
		if _, ok := l.Traits[trait]; !ok {
			return fmt.Errorf("%w: synonym %q refers to unknown trait %q", ErrInvalidLexicon, word, trait)
		}
	}

	return nil
}

// checkTemplate rejects empty templates and placeholders other than allowed.
func checkTemplate(tmpl, allowed string) error {
	if strings.TrimSpace(tmpl) == "" {
		return errors.New("empty template")
	}
	for _, found := range placeholderPattern.FindAllString(tmpl, -1) {
		if found != allowed {
			return fmt.Errorf("%w %s in %q", ErrUnknownPlaceholder, found, tmpl)
		}
	}
	return nil
}
