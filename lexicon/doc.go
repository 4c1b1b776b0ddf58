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


// Package lexicon holds the static keyword tables that drive prompt analysis.
//
// A Lexicon maps words found in a free-text prompt onto the shape key
// vocabulary of a parametric character rig:
//
//   - Concepts select a demographic or stylistic category (Asian, Elf, ...).
//     The category both activates an L1_<category> key and is substituted
//     into {ethnicity} placeholders of feature templates.
//   - Features pair a noun (chin, eyes, shoulders) with modifiers
//     (long, wide-set, broad), each selecting one or more templates.
//   - Intensities scale a modifier ("very long" emits 0.9 instead of the
//     default value).
//   - Negations flip a modifier to its antonym, or zero it when the
//     antonym is not available for that feature.
//   - Compounds are whole-body keywords ("muscular") emitted across the
//     compound body parts via the {part} placeholder.
//   - Traits are descriptive adjectives ("intelligent") implying a bundle of
//     feature/modifier pairs at fixed strengths.
//
// Default returns the built-in tables. LoadFile layers a YAML document over
// them so installations can extend the vocabulary without a rebuild:
//
//	concepts:
//	  nordic: Caucasian
//	features:
//	  brows:
//	    thick: L2_{ethnicity}_Brows_Volume_max
//	    thin: [L2_{ethnicity}_Brows_Volume_min]
package lexicon
