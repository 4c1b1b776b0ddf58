package storage

import (
	"context"
	"time"

	"github.com/poiesic/morphit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	// It does not close the shared backend.
	Close() error
}

// CharacterRepository persists the parameter state of character objects.
type CharacterRepository interface {
	Repository
	// SaveCharacters inserts or replaces character records.
	// IDs are derived from the character name (IDFromContent).
	// InsertedAt is preserved across saves; UpdatedAt is set on every save.
	// Returns the records with IDs and timestamps populated.
	SaveCharacters(ctx context.Context, records ...*core.CharacterRecord) ([]*core.CharacterRecord, error)

	// GetCharacter retrieves a character record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetCharacter(ctx context.Context, id core.ID) (*core.CharacterRecord, error)

	// FindCharacterByName retrieves a character record by exact name.
	// Returns ErrNotFound if no record has that name.
	FindCharacterByName(ctx context.Context, name string) (*core.CharacterRecord, error)

	// ListCharacters returns every character record ordered by name.
	ListCharacters(ctx context.Context) ([]*core.CharacterRecord, error)

	// DeleteCharacters removes character records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteCharacters(ctx context.Context, ids ...core.ID) error
}

// GenerationRepository stores the history of processed requests.
type GenerationRepository interface {
	Repository
	// AddGenerations appends generation records.
	// IDs are always assigned from a sequence.
	// A zero Timestamp is set to the current time.
	AddGenerations(ctx context.Context, generations ...*core.Generation) ([]*core.Generation, error)

	// GetGeneration retrieves a generation by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetGeneration(ctx context.Context, id core.ID) (*core.Generation, error)

	// GetRecentGenerations returns up to limit generations, newest first.
	GetRecentGenerations(ctx context.Context, limit int) ([]*core.Generation, error)

	// GetGenerationsByDateRange returns generations where
	// start <= Timestamp < end, oldest first.
	GetGenerationsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Generation, error)
}
