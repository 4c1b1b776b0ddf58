package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/storage"
)

// CharacterRepository implements storage.CharacterRepository for BadgerDB.
type CharacterRepository struct {
	backend *Backend
}

var _ storage.CharacterRepository = (*CharacterRepository)(nil)

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository(backend *Backend) (*CharacterRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &CharacterRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CharacterRepository has no resources to release.
func (r *CharacterRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CharacterRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveCharacters inserts or replaces character records.
func (r *CharacterRepository) SaveCharacters(ctx context.Context, records ...*core.CharacterRecord) ([]*core.CharacterRecord, error) {
	for _, record := range records {
		if err := core.ValidateCharacterRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, record := range records {
			// Names are unique, so the name is the content the ID derives from
			record.Id = core.IDFromContent(record.Name)

			key := makeCharacterKey(record.Id)
			old, err := readCharacter(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				record.InsertedAt = old.InsertedAt
			} else if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			value := storage.MarshalCharacterRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store name index
			if err := tx.Set(makeCharacterNameKey(record.Name), storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetCharacter retrieves a character record by ID.
func (r *CharacterRepository) GetCharacter(ctx context.Context, id core.ID) (*core.CharacterRecord, error) {
	var result *core.CharacterRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readCharacter(tx, makeCharacterKey(id))
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

// FindCharacterByName retrieves a character record by exact name.
func (r *CharacterRepository) FindCharacterByName(ctx context.Context, name string) (*core.CharacterRecord, error) {
	var result *core.CharacterRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCharacterNameKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: character %q", storage.ErrNotFound, name)
			}
			return err
		}

		var id core.ID
		err = item.Value(func(val []byte) error {
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readCharacter(tx, makeCharacterKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: character %q", storage.ErrNotFound, name)
		}
		return nil
	}, false)
	return result, err
}

// ListCharacters returns every character record ordered by name.
func (r *CharacterRepository) ListCharacters(ctx context.Context) ([]*core.CharacterRecord, error) {
	var results []*core.CharacterRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(characterRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.CharacterRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalCharacterRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.CharacterRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return results, nil
}

// DeleteCharacters removes character records by their IDs.
func (r *CharacterRepository) DeleteCharacters(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCharacterKey(id)

			// Read record to get the name for index cleanup
			record, err := readCharacter(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeCharacterNameKey(record.Name)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Helper methods

// readCharacter reads a character record from the transaction.
// Returns nil without error when the key is absent.
func readCharacter(tx *badger.Txn, key []byte) (*core.CharacterRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.CharacterRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalCharacterRecord(val)
		return err
	})
	return record, err
}

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return bytes.HasPrefix(s, prefix)
}
