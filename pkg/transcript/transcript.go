// Package transcript archives delegated conversations in a bbolt file so that
// answers can be audited against the tool results they were built from.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scriptura/pkg/llm"
	"scriptura/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var bucketName = []byte("transcripts")

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("transcript not found")

// Entry is one archived run.
type Entry struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	Messages  []llm.Message `json:"messages"`
	Answer    string        `json:"answer,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// BoltRecorder implements agent.Recorder on top of bbolt. Keys are the
// creation second in hex followed by the bucket sequence, so iteration
// order is creation order and utils.IsOlderThan can read their age.
type BoltRecorder struct {
	db *bolt.DB
}

// Open opens (or creates) the archive at path.
func Open(path string) (*BoltRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open transcript archive %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRecorder{db: db}, nil
}

// Record stores one finished run.
func (b *BoltRecorder) Record(_ context.Context, requestID string, messages []llm.Message, answer string, runErr error) error {
	now := time.Now()
	e := Entry{
		RequestID: requestID,
		Messages:  messages,
		Answer:    answer,
		CreatedAt: now,
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}
		e.ID = fmt.Sprintf("%08x%016x", uint32(now.Unix()), seq)

		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(e.ID), raw)
	})
}

// Get loads one entry.
func (b *BoltRecorder) Get(id string) (*Entry, error) {
	var e Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (b *BoltRecorder) Recent(limit int) ([]*Entry, error) {
	var out []*Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

// Prune deletes entries older than maxAge and reports how many went.
func (b *BoltRecorder) Prune(maxAge time.Duration) (int, error) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		var old [][]byte
		c := bkt.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if !utils.IsOlderThan(string(k), maxAge) {
				break
			}
			old = append(old, append([]byte(nil), k...))
		}
		// Deleting through the cursor while iterating skips keys.
		for _, k := range old {
			if err := bkt.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close closes the underlying file.
func (b *BoltRecorder) Close() error {
	return b.db.Close()
}
