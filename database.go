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


package morphit

import (
	"context"
	"log/slog"

	"github.com/poiesic/morphit/bridge"
	"github.com/poiesic/morphit/exchange"
	"github.com/poiesic/morphit/lexicon"
	"github.com/poiesic/morphit/mapper"
	"github.com/poiesic/morphit/scene"
	"github.com/poiesic/morphit/storage"
	"github.com/poiesic/morphit/storage/badger"
)

// Database owns the Badger store holding a scene and its generation
// history, and builds the components that work on it.
type Database struct {
	backend        *badger.Backend
	characterRepo  storage.CharacterRepository
	generationRepo storage.GenerationRepository
	lexicon        *lexicon.Lexicon
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	lexicon  *lexicon.Lexicon
	logger   *slog.Logger
	inMemory bool
}

// WithLexicon sets the tables used by mappers built from the database.
// Default is lexicon.Default().
func WithLexicon(lex *lexicon.Lexicon) DatabaseOption {
	return func(o *databaseOptions) {
		o.lexicon = lex
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// InMemory keeps everything in memory. The path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.lexicon == nil {
		options.lexicon = lexicon.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	characterRepo, err := badger.NewCharacterRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	generationRepo, err := badger.NewGenerationRepository(backend)
	if err != nil {
		characterRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:        backend,
		characterRepo:  characterRepo,
		generationRepo: generationRepo,
		lexicon:        options.lexicon,
		logger:         options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.generationRepo.Close(); err != nil {
		db.logger.Error("error closing generation repository", "err", err)
		return err
	}
	if err := db.characterRepo.Close(); err != nil {
		db.logger.Error("error closing character repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CharacterRepository() storage.CharacterRepository {
	return db.characterRepo
}

func (db *Database) GenerationRepository() storage.GenerationRepository {
	return db.generationRepo
}

func (db *Database) Lexicon() *lexicon.Lexicon {
	return db.lexicon
}

// NewMapper returns a mapper over the database's lexicon.
func (db *Database) NewMapper() (*mapper.Mapper, error) {
	return mapper.New(mapper.WithLexicon(db.lexicon), mapper.WithLogger(db.logger))
}

// OpenScene returns the persisted scene, loaded and ready to modify.
func (db *Database) OpenScene(ctx context.Context) (*scene.Scene, error) {
	sc, err := scene.New(scene.WithRepository(db.characterRepo), scene.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	if err := sc.Load(ctx); err != nil {
		return nil, err
	}
	return sc, nil
}

// NewWatcher builds a bridge that applies requests from transport to the
// persisted scene and records each one in the history.
func (db *Database) NewWatcher(ctx context.Context, transport exchange.Transport, opts ...bridge.Option) (*bridge.Watcher, error) {
	m, err := db.NewMapper()
	if err != nil {
		return nil, err
	}
	sc, err := db.OpenScene(ctx)
	if err != nil {
		return nil, err
	}

	opts = append([]bridge.Option{
		bridge.WithLogger(db.logger),
		bridge.WithGenerations(db.generationRepo),
	}, opts...)
	return bridge.New(transport, m, sc, opts...)
}
