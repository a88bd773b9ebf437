package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aweist/league-calendar/models"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketFetches = "fetches"
	bucketRuns    = "runs"
)

// BoltArchive keeps an audit trail of downloaded payloads and run
// summaries. Nothing in a run reads it back.
type BoltArchive struct {
	db *bolt.DB
}

func NewBoltArchive(dbPath string) (*BoltArchive, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketFetches))
		if err != nil {
			return fmt.Errorf("creating fetches bucket: %w", err)
		}

		_, err = tx.CreateBucketIfNotExists([]byte(bucketRuns))
		if err != nil {
			return fmt.Errorf("creating runs bucket: %w", err)
		}

		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltArchive{db: db}, nil
}

func (s *BoltArchive) Close() error {
	return s.db.Close()
}

// RecordFetch stores a payload under an auto-incremented key so fetches
// list in arrival order.
func (s *BoltArchive) RecordFetch(rec models.FetchRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketFetches))

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating fetch key: %w", err)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling fetch: %w", err)
		}

		return b.Put(itob(seq), data)
	})
}

func (s *BoltArchive) GetAllFetches() ([]models.FetchRecord, error) {
	var fetches []models.FetchRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketFetches))

		return b.ForEach(func(k, v []byte) error {
			var rec models.FetchRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			fetches = append(fetches, rec)
			return nil
		})
	})

	return fetches, err
}

func (s *BoltArchive) SaveRun(run models.RunSummary) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}

		return b.Put([]byte(run.ID), data)
	})
}

// GetRecentRuns returns up to limit runs, newest first. Run IDs sort by
// start time. limit <= 0 returns every run.
func (s *BoltArchive) GetRecentRuns(limit int) ([]models.RunSummary, error) {
	var runs []models.RunSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run models.RunSummary
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})

	return runs, err
}

// CleanupOldFetches drops archived payloads fetched before the cutoff.
func (s *BoltArchive) CleanupOldFetches(before time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketFetches))

		var keysToDelete [][]byte

		err := b.ForEach(func(k, v []byte) error {
			var rec models.FetchRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			if rec.FetchedAt.Before(before) {
				keysToDelete = append(keysToDelete, append([]byte(nil), k...))
			}

			return nil
		})

		if err != nil {
			return err
		}

		for _, key := range keysToDelete {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		removed = len(keysToDelete)

		return nil
	})
	return removed, err
}

// RunID formats a start time so that IDs sort chronologically.
func RunID(startedAt time.Time) string {
	return startedAt.UTC().Format("20060102T150405.000000000Z")
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
