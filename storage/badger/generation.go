package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/storage"
)

// GenerationRepository implements storage.GenerationRepository for BadgerDB.
type GenerationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.GenerationRepository = (*GenerationRepository)(nil)

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(backend *Backend) (*GenerationRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	idSeq, err := backend.GetSequence(generationIDSeq)
	if err != nil {
		return nil, err
	}

	return &GenerationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *GenerationRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *GenerationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddGenerations appends generation records.
func (r *GenerationRepository) AddGenerations(ctx context.Context, generations ...*core.Generation) ([]*core.Generation, error) {
	for _, generation := range generations {
		if generation != nil && generation.Timestamp.IsZero() {
			generation.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
		}
		if err := core.ValidateGeneration(generation); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, generation := range generations {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			generation.Id = core.ID(nextID)

			value := storage.MarshalGeneration(generation)
			if err := tx.Set(makeGenerationKey(generation.Id), value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeGenerationDateKey(generation.Timestamp, generation.Id)
			if err := tx.Set(dateKey, storage.MarshalID(generation.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return generations, nil
}

// GetGeneration retrieves a generation by ID.
func (r *GenerationRepository) GetGeneration(ctx context.Context, id core.ID) (*core.Generation, error) {
	var result *core.Generation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readGeneration(tx, makeGenerationKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecentGenerations returns up to limit generations, newest first.
func (r *GenerationRepository) GetRecentGenerations(ctx context.Context, limit int) ([]*core.Generation, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", storage.ErrInvalidQuery, limit)
	}

	var results []*core.Generation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent records first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the date index
		startKey := makePartialGenerationDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(generationDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			if !hasPrefix(iter.Item().Key(), prefix) {
				break
			}

			generation, err := r.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if generation != nil {
				results = append(results, generation)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetGenerationsByDateRange returns generations where start <= Timestamp < end.
func (r *GenerationRepository) GetGenerationsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Generation, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", storage.ErrInvalidQuery, end, start)
	}

	var results []*core.Generation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialGenerationDateKey(start)
		endKey := makePartialGenerationDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key[:min(len(key), len(endKey))], endKey) >= 0 {
				break
			}

			generation, err := r.resolveIndexEntry(tx, iter.Item())
			if err != nil {
				return err
			}
			if generation != nil {
				results = append(results, generation)
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// resolveIndexEntry loads the generation a date index entry points at.
func (r *GenerationRepository) resolveIndexEntry(tx *badger.Txn, item *badger.Item) (*core.Generation, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readGeneration(tx, makeGenerationKey(id))
}

// readGeneration reads a generation from the transaction.
func readGeneration(tx *badger.Txn, key []byte) (*core.Generation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var generation *core.Generation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		generation, unmarshalErr = storage.UnmarshalGeneration(val)
		return unmarshalErr
	})
	return generation, err
}
