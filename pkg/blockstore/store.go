package blockstore

import (
	"fmt"
	"log"

	bbolt "go.etcd.io/bbolt"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// formatVersion is bumped when the on-disk record layout changes.
const formatVersion = 1

// Store wraps a bbolt database holding the block table and per-user
// preference blobs.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketBlocks, bucketUserPrefs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Put(keyVersion, intToKey(formatVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blockstore: create buckets: %w", err)
	}

	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// LoadBlocks reads the whole block table. An error here is fatal to the
// caller: decay windows cannot be timed safely without at least an empty
// table.
func (s *Store) LoadBlocks() (map[world.EntityID]BlockRecord, error) {
	records := make(map[world.EntityID]BlockRecord)
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBlocks)
		return b.ForEach(func(k, v []byte) error {
			rec, err := decodeBlockRecord(v)
			if err != nil {
				return fmt.Errorf("decode block %d: %w", keyToID(k), err)
			}
			records[keyToID(k)] = *rec
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("blockstore: load blocks: %w", err)
	}
	log.Printf("blockstore: loaded %d block records", len(records))
	return records, nil
}

// PutBlock persists a single block record (write-through).
func (s *Store) PutBlock(id world.EntityID, rec BlockRecord) error {
	data, err := encodeBlockRecord(&rec)
	if err != nil {
		return fmt.Errorf("blockstore: encode block %d: %w", id, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put(idToKey(id), data)
	})
}

// DeleteBlock removes a block record. Deleting an absent id is a no-op.
func (s *Store) DeleteBlock(id world.EntityID) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Delete(idToKey(id))
	})
}

// SaveBlocks replaces the stored block table with the given one, batching
// 1000 records per transaction. Used at clean shutdown.
func (s *Store) SaveBlocks(records map[world.EntityID]BlockRecord, now int64) error {
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketBlocks); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketBlocks)
		return err
	})
	if err != nil {
		return fmt.Errorf("blockstore: reset block bucket: %w", err)
	}

	type row struct {
		id  world.EntityID
		rec BlockRecord
	}
	batch := make([]row, 0, 1000)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.bolt.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketBlocks)
			for _, r := range batch {
				data, err := encodeBlockRecord(&r.rec)
				if err != nil {
					return fmt.Errorf("encode block %d: %w", r.id, err)
				}
				if err := b.Put(idToKey(r.id), data); err != nil {
					return err
				}
			}
			return nil
		})
		batch = batch[:0]
		return err
	}

	count := 0
	for id, rec := range records {
		batch = append(batch, row{id, rec})
		count++
		if len(batch) >= 1000 {
			if err := flush(); err != nil {
				return fmt.Errorf("blockstore: save blocks: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("blockstore: save blocks: %w", err)
	}

	err = s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if err := b.Put(keySavedAt, intToKey(now)); err != nil {
			return err
		}
		return b.Put(keyBlockRows, intToKey(int64(count)))
	})
	if err != nil {
		return fmt.Errorf("blockstore: save meta: %w", err)
	}

	log.Printf("blockstore: saved %d block records", count)
	return nil
}

// BlockCount returns the number of stored block records.
func (s *Store) BlockCount() int {
	n := 0
	s.bolt.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketBlocks).Stats().KeyN
		return nil
	})
	return n
}

// LoadUserPrefs reads one user's preference blob. The second return is
// false when the user has no stored blob yet.
func (s *Store) LoadUserPrefs(id world.UserID) (*UserPrefs, bool, error) {
	var prefs *UserPrefs
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketUserPrefs).Get(userToKey(id))
		if v == nil {
			return nil
		}
		p, err := decodeUserPrefs(v)
		if err != nil {
			return fmt.Errorf("decode prefs %d: %w", id, err)
		}
		prefs = p
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("blockstore: load user prefs: %w", err)
	}
	if prefs == nil {
		return nil, false, nil
	}
	return prefs, true, nil
}

// PutUserPrefs persists one user's preference blob.
func (s *Store) PutUserPrefs(id world.UserID, prefs *UserPrefs) error {
	data, err := encodeUserPrefs(prefs)
	if err != nil {
		return fmt.Errorf("blockstore: encode prefs %d: %w", id, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUserPrefs).Put(userToKey(id), data)
	})
}
