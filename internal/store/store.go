// Package store persists the local activity journal in BoltDB.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/seerctl/internal/domain"
)

var bucketActivity = []byte("activity")

// DefaultLimit is how many entries are retained before the oldest are pruned
const DefaultLimit = 500

// ActivityStore implements domain.ActivityStore using BoltDB.
type ActivityStore struct {
	db    *bolt.DB
	limit int
	now   func() time.Time

	mu sync.RWMutex // Protects memory cache

	// Entries by sequence, promoted on read. In memory-only mode this is the
	// whole journal.
	cache map[uint64][]byte
	seq   uint64
}

var _ domain.ActivityStore = (*ActivityStore)(nil)

// NewActivityStore opens the journal at path. An empty path keeps the
// journal in memory only.
func NewActivityStore(path string, limit int) (*ActivityStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &ActivityStore{limit: limit, now: time.Now, cache: make(map[uint64][]byte)}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketActivity)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *ActivityStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Record appends an entry, filling ID and At when empty
func (s *ActivityStore) Record(a domain.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = s.now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		s.seq++
		s.cache[s.seq] = data
		s.pruneMemory()
		s.mu.Unlock()
		return nil
	}

	var seq uint64
	var pruned []uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActivity)
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), data); err != nil {
			return err
		}

		// Drop oldest beyond limit
		if seq <= uint64(s.limit) {
			return nil
		}
		cutoff := seq - uint64(s.limit)
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.First() {
			old := binary.BigEndian.Uint64(k)
			if old > cutoff {
				break
			}
			if err := b.Delete(k); err != nil {
				return err
			}
			pruned = append(pruned, old)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[seq] = data
	for _, k := range pruned {
		delete(s.cache, k)
	}
	s.mu.Unlock()
	return nil
}

// pruneMemory drops the oldest in-memory entries beyond limit. Caller holds mu.
func (s *ActivityStore) pruneMemory() {
	if len(s.cache) <= s.limit {
		return
	}
	keys := s.sortedKeys()
	for _, k := range keys[:len(keys)-s.limit] {
		delete(s.cache, k)
	}
}

func (s *ActivityStore) sortedKeys() []uint64 {
	keys := make([]uint64, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (s *ActivityStore) Recent(n int) ([]domain.Activity, error) {
	var raw [][]byte

	if s.db == nil {
		s.mu.RLock()
		keys := s.sortedKeys()
		for i := len(keys) - 1; i >= 0 && (n <= 0 || len(raw) < n); i-- {
			raw = append(raw, s.cache[keys[i]])
		}
		s.mu.RUnlock()
	} else {
		var err error
		raw, err = s.readRecent(n)
		if err != nil {
			return nil, err
		}
	}

	out := make([]domain.Activity, 0, len(raw))
	for _, data := range raw {
		var a domain.Activity
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// readRecent walks the bucket backwards, preferring cached values and
// promoting what it reads from disk
func (s *ActivityStore) readRecent(n int) ([][]byte, error) {
	var raw [][]byte
	promote := make(map[uint64][]byte)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActivity)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && (n <= 0 || len(raw) < n); k, v = c.Prev() {
			seq := binary.BigEndian.Uint64(k)

			s.mu.RLock()
			cached, ok := s.cache[seq]
			s.mu.RUnlock()
			if ok {
				raw = append(raw, cached)
				continue
			}

			data := make([]byte, len(v))
			copy(data, v)
			promote[seq] = data
			raw = append(raw, data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(promote) > 0 {
		s.mu.Lock()
		for k, v := range promote {
			s.cache[k] = v
		}
		s.mu.Unlock()
	}
	return raw, nil
}

// Clear wipes the journal
func (s *ActivityStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[uint64][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketActivity); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketActivity)
		return err
	})
}
