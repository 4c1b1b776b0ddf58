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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRequest indicates a Request failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidResponse indicates a Response failed validation.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrInvalidCharacter indicates a CharacterRecord failed validation.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrInvalidGeneration indicates a Generation failed validation.
	ErrInvalidGeneration = errors.New("invalid generation")

	// ErrEmptyPrompt indicates the Prompt field is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidStatus indicates an unknown Status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidGender indicates an unknown Gender value.
	ErrInvalidGender = errors.New("invalid gender")

	// ErrEmptyCharacterName indicates the character Name field is empty.
	ErrEmptyCharacterName = errors.New("character name cannot be empty")

	// ErrValueOutOfRange indicates a parameter value outside [0,1].
	ErrValueOutOfRange = errors.New("parameter value out of range")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
