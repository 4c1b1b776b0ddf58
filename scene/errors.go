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


package scene

import "errors"

var (
	// ErrObjectNotFound is returned when no character matches a name prefix.
	ErrObjectNotFound = errors.New("character object not found")

	// ErrObjectExists is returned when seeding would overwrite a character.
	ErrObjectExists = errors.New("character object already exists")

	// ErrUnknownParameter is returned when setting a parameter the
	// character does not expose.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrValueOutOfRange is returned for values outside [0, 1].
	ErrValueOutOfRange = errors.New("parameter value out of range")

	// ErrInvalidManifest is returned when a scene manifest fails validation.
	ErrInvalidManifest = errors.New("invalid scene manifest")
)
