// Package runlog records extraction runs in a bbolt database so results
// can be reviewed after the fact.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var bucketRuns = []byte("runs")

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Record describes one extraction run.
type Record struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Vendor     string        `json:"vendor"`
	Page       int           `json:"page,omitempty"`
	Score      float64       `json:"score"`
	Acceptable bool          `json:"acceptable"`
	Rows       int           `json:"rows"`
	Columns    int           `json:"columns"`
	Output     string        `json:"output,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`
}

// Status returns "SUCCESS" for acceptable runs and "FAIL" otherwise.
func (r Record) Status() string {
	if r.Acceptable {
		return "SUCCESS"
	}
	return "FAIL"
}

// Store is a bbolt-backed run log. Keys are time-ordered UUIDv7 ids, so
// iteration order is chronological.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the run log at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating run log directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run log: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores rec, assigning a new id when rec.ID is empty, and returns the
// id.
func (s *Store) Add(rec Record) (string, error) {
	var key uuid.UUID
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating run id: %w", err)
		}
		key = id
		rec.ID = id.String()
	} else {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return "", fmt.Errorf("invalid run id %q: %w", rec.ID, err)
		}
		key = id
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding run: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).Put(key[:], data)
	})
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	return rec.ID, nil
}

// Get returns the run with the given id.
func (s *Store) Get(id string) (*Record, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var rec Record
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get(key[:])
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Recent returns up to n runs, newest first. n <= 0 returns every run.
func (s *Store) Recent(n int) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if n > 0 && len(out) >= n {
				break
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding run %x: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored runs.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketRuns).Stats().KeyN
		return nil
	})
	return count, err
}
