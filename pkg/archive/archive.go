// Package archive persists finished voice sessions. The live Session
// and Transcript are in-memory only; archiving is an explicit step the
// caller takes after stop, backed by a local BadgerDB store with
// msgpack-encoded records.
package archive

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/praxislabs/vocalis/pkg/jsontime"
	"github.com/praxislabs/vocalis/pkg/realtime"
	"github.com/praxislabs/vocalis/pkg/voice"
)

// ErrNotFound is returned when no record exists for a session ID.
var ErrNotFound = errors.New("archive: session not found")

// keyPrefix namespaces session records inside the store.
const keyPrefix = "session:"

// Record is one archived voice session.
type Record struct {
	ID         string               `msgpack:"id" json:"id"`
	Kind       realtime.SessionKind `msgpack:"kind" json:"kind"`
	ScenarioID string               `msgpack:"scenario_id,omitempty" json:"scenarioId,omitempty"`
	StartedAt  jsontime.Milli       `msgpack:"started_at" json:"startedAt"`
	StoppedAt  jsontime.Milli       `msgpack:"stopped_at" json:"stoppedAt"`
	Entries    []voice.Entry        `msgpack:"entries" json:"entries"`
}

// Options configures the archive store.
type Options struct {
	// Dir is the BadgerDB data directory. Required unless InMemory.
	Dir string

	// InMemory runs the store without disk persistence. Useful for
	// tests with a real badger engine.
	InMemory bool
}

// Store holds archived session records.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the archive store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("archive: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(quietLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("archive: open store: %w", err)
	}
	return &Store{db: db}, nil
}

func recordKey(id string) []byte {
	return []byte(keyPrefix + id)
}

// Save stores a record, overwriting any existing record with the same
// session ID.
func (s *Store) Save(_ context.Context, rec *Record) error {
	if rec.ID == "" {
		return errors.New("archive: record missing session ID")
	}
	value, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("archive: encode record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), value)
	})
}

// Get retrieves the record for a session ID.
func (s *Store) Get(_ context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the record for a session ID. Deleting a missing
// record is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(id))
	})
}

// List iterates all archived sessions in lexicographic session-ID
// order. A record that fails to decode is yielded as an error without
// ending the iteration.
func (s *Store) List(_ context.Context) iter.Seq2[*Record, error] {
	prefix := []byte(keyPrefix)
	return func(yield func(*Record, error) bool) {
		err := s.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = prefix
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var rec Record
				err := it.Item().Value(func(val []byte) error {
					return msgpack.Unmarshal(val, &rec)
				})
				if err != nil {
					if !yield(nil, err) {
						return nil
					}
					continue
				}
				if !yield(&rec, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// quietLogger routes badger's complaints through slog and drops its
// info/debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { slog.Error(fmt.Sprintf("badger: "+f, v...)) }
func (quietLogger) Warningf(f string, v ...interface{}) { slog.Warn(fmt.Sprintf("badger: "+f, v...)) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
