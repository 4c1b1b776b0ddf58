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

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidateRequest validates a Request according to exchange rules.
//
// Validation rules:
//   - Prompt must not be blank
//   - Status, when set, must be a known value
//
// NOT validated (informational only):
//   - Timestamp (free-form text written by the producer)
//   - ID (older producers omit it)
func ValidateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyPrompt)
	}

	if req.Status != "" {
		if err := ValidateStatus(req.Status); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	return nil
}

// ValidateResponse validates a Response. Only terminal statuses are allowed.
func ValidateResponse(resp *Response) error {
	if resp == nil {
		return fmt.Errorf("%w: response is nil", ErrInvalidResponse)
	}

	if resp.Status != StatusCompleted && resp.Status != StatusError {
		return fmt.Errorf("%w: %w: %q", ErrInvalidResponse, ErrInvalidStatus, resp.Status)
	}

	return nil
}

// ValidateCharacterRecord validates a CharacterRecord.
//
// Validation rules:
//   - Name must not be empty
//   - Every parameter value must lie in [0,1]
func ValidateCharacterRecord(record *CharacterRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidCharacter)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCharacter, ErrEmptyCharacterName)
	}

	for name, value := range record.Parameters {
		if math.IsNaN(value) || value < 0 || value > 1 {
			return fmt.Errorf("%w: %w: %s=%v", ErrInvalidCharacter, ErrValueOutOfRange, name, value)
		}
	}

	return nil
}

// ValidateGeneration validates a Generation before it is stored.
func ValidateGeneration(gen *Generation) error {
	if gen == nil {
		return fmt.Errorf("%w: generation is nil", ErrInvalidGeneration)
	}

	if err := ValidateStatus(gen.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGeneration, err)
	}

	if gen.Gender != "" {
		if err := ValidateGender(gen.Gender); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGeneration, err)
		}
	}

	if !IsValidTimestamp(gen.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidGeneration, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus validates that a Status has a known value.
func ValidateStatus(status Status) error {
	switch status {
	case StatusPending, StatusCompleted, StatusError:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidStatus, status)
}

// ValidateGender validates that a Gender has a known value.
func ValidateGender(gender Gender) error {
	if gender != GenderMale && gender != GenderFemale {
		return fmt.Errorf("%w: value %q", ErrInvalidGender, gender)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
