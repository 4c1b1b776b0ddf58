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

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/storage"
)

// Scene is the set of character objects a bridge applies prompts to.
// When backed by a repository, character state survives restarts.
type Scene struct {
	repo   storage.CharacterRepository
	logger *slog.Logger

	mu         sync.RWMutex
	characters map[string]*Character
}

// Option configures a Scene.
type Option func(*Scene) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scene) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRepository persists characters through repo.
// Without it the scene lives in memory only.
func WithRepository(repo storage.CharacterRepository) Option {
	return func(s *Scene) error {
		s.repo = repo
		return nil
	}
}

// New creates an empty scene.
func New(opts ...Option) (*Scene, error) {
	s := &Scene{
		logger:     slog.Default(),
		characters: make(map[string]*Character),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load replaces the in-memory characters with those in the repository.
func (s *Scene) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	records, err := s.repo.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	characters := make(map[string]*Character, len(records))
	for _, record := range records {
		characters[record.Name] = FromRecord(record)
	}

	s.mu.Lock()
	s.characters = characters
	s.mu.Unlock()

	s.logger.Debug("scene loaded", "characters", len(characters))
	return nil
}

// Add puts characters into the scene, replacing any with the same name.
func (s *Scene) Add(characters ...*Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range characters {
		s.characters[c.Name()] = c
	}
}

// Get returns the character with exactly the given name.
func (s *Scene) Get(name string) (*Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[name]
	return c, ok
}

// Object returns the first character, by name order, whose name starts
// with prefix. Duplicated objects ("mb_male.001") match their base name.
func (s *Scene) Object(prefix string) (*Character, error) {
	for _, c := range s.Characters() {
		if strings.HasPrefix(c.Name(), prefix) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, prefix)
}

// Characters returns every character sorted by name.
func (s *Scene) Characters() []*Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	characters := make([]*Character, 0, len(s.characters))
	for _, c := range s.characters {
		characters = append(characters, c)
	}
	slices.SortFunc(characters, func(a, b *Character) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return characters
}

// Save persists the given characters, or every character when none are given.
func (s *Scene) Save(ctx context.Context, characters ...*Character) error {
	if s.repo == nil {
		return nil
	}
	if len(characters) == 0 {
		characters = s.Characters()
	}

	records := make([]*core.CharacterRecord, len(characters))
	for i, c := range characters {
		records[i] = c.Record()
	}
	if _, err := s.repo.SaveCharacters(ctx, records...); err != nil {
		return fmt.Errorf("failed to save scene: %w", err)
	}
	return nil
}

// Seed creates the characters a manifest describes and persists them.
// Existing characters are only replaced when overwrite is set.
func (s *Scene) Seed(ctx context.Context, manifest *Manifest, overwrite bool) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	if !overwrite {
		for _, entry := range manifest.Characters {
			if _, ok := s.Get(entry.Name); ok {
				return fmt.Errorf("%w: %s", ErrObjectExists, entry.Name)
			}
		}
	}

	characters := make([]*Character, len(manifest.Characters))
	for i, entry := range manifest.Characters {
		characters[i] = NewCharacter(entry.Name, entry.Parameters...)
	}
	s.Add(characters...)

	s.logger.Info("scene seeded", "characters", len(characters))
	return s.Save(ctx, characters...)
}
