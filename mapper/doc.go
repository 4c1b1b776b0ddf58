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


// Package mapper converts free-text character descriptions into shape key
// activations.
//
// Analysis is adjacency lookup over the tables of a lexicon.Lexicon, not
// language understanding. A prompt is lower-cased and split into word
// tokens, then processed in passes whose emissions share one
// core.ParameterSet (later emissions overwrite earlier ones):
//
//  1. Category: the first concept keyword selects the category, emitting
//     L1_<Category> at 1.0. The default category is used for template
//     substitution when none is named.
//  2. Compounds: whole-body words such as "muscular", optionally restricted
//     by a following part word ("muscular arms").
//  3. Traits: descriptive words such as "intelligent" imply feature bundles.
//  4. Features: "<negation>? <intensity>? <modifier> <feature>" phrases.
//
// In the feature pass an intensity word directly before the modifier sets
// the value; a negation word directly before the intensity word, or directly
// before the modifier when there is no intensity word, negates the phrase.
// "not very long chin" therefore emits the short-chin key at 0.9. A negated
// modifier is replaced by its antonym when that antonym exists for the same
// feature; otherwise the phrase is emitted at 0.
//
// Basic usage:
//
//	m, err := mapper.New()
//	if err != nil {
//	    return err
//	}
//	params := m.Analyze("a very asian face with a long chin")
package mapper
