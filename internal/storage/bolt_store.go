package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/costadelinmigrante/news-importer/internal/domain"
)

const (
	draftBucket      = "drafts"
	sourceBucket     = "sources"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Drafts are kept until
// deleted by an operator; seen-source entries expire after the TTL.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	sourceTTL       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(draftBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(sourceBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		sourceTTL:       opts.SourceTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveDraft stores the draft keyed by slug.
func (b *boltStore) SaveDraft(draft domain.NewsDraft) error {
	if b == nil || b.db == nil {
		return nil
	}
	if draft.Slug == "" {
		return fmt.Errorf("draft slug is empty")
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}
		return bucket.Put([]byte(draft.Slug), payload)
	})
}

// GetDraft loads a draft by slug.
func (b *boltStore) GetDraft(slug string) (domain.NewsDraft, bool, error) {
	if b == nil || b.db == nil {
		return domain.NewsDraft{}, false, nil
	}

	var draft domain.NewsDraft
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}
		value := bucket.Get([]byte(slug))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &draft); err != nil {
			return fmt.Errorf("unmarshal draft: %w", err)
		}
		found = true
		return nil
	})
	return draft, found, err
}

// SeenSource checks if the source URL was already imported (and not expired).
func (b *boltStore) SeenSource(url string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return false, err
	}

	var exists bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sourceBucket))
		if bucket == nil {
			return fmt.Errorf("source bucket missing")
		}

		key := []byte(url)
		value := bucket.Get(key)
		if value == nil {
			exists = false
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(time.Now()) {
			exists = false
			return bucket.Delete(key)
		}

		exists = true
		return nil
	})
	return exists, err
}

// MarkSource records the source URL as imported.
func (b *boltStore) MarkSource(url string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sourceBucket))
		if bucket == nil {
			return fmt.Errorf("source bucket missing")
		}
		buf := make([]byte, expiryValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.sourceTTL).Unix()))
		return bucket.Put([]byte(url), buf)
	})
}

// maybeCleanupExpired removes expired source entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sourceBucket))
		if bucket == nil {
			return fmt.Errorf("source bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
