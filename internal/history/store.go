// internal/history/store.go
package history

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const recordPrefix = "check"

// CheckRecord summarizes one completed integrity check.
type CheckRecord struct {
	ID           string    `json:"id"`
	Root         string    `json:"root"`
	BaselinePath string    `json:"baseline_path"`
	CheckedAt    time.Time `json:"checked_at"`
	Unchanged    int       `json:"unchanged"`
	Modified     int       `json:"modified"`
	Added        int       `json:"added"`
	Removed      int       `json:"removed"`
	Skipped      int       `json:"skipped"`
}

// Clean reports whether the recorded check found no changes.
func (r *CheckRecord) Clean() bool {
	return r.Modified == 0 && r.Added == 0 && r.Removed == 0
}

// Store keeps check history in a BadgerDB database.
type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable logging noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func makeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", recordPrefix, id))
}

// Append stores a new check record, assigning an ID and timestamp when
// the caller left them empty.
func (s *Store) Append(record *CheckRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CheckedAt.IsZero() {
		record.CheckedAt = time.Now().UTC()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling check record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(record.ID), data)
	})
}

// Get retrieves a single record by ID.
func (s *Store) Get(id string) (*CheckRecord, error) {
	var record CheckRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("check record not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns all recorded checks, most recent first.
func (s *Store) List() ([]CheckRecord, error) {
	var records []CheckRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recordPrefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var record CheckRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing check records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CheckedAt.After(records[j].CheckedAt)
	})
	return records, nil
}
