package blockstore

import (
	"bytes"
	"encoding/gob"
)

// BlockRecord is the persisted state of one building block, keyed by the
// block's entity id. CreatedAt is set once at first registration and never
// mutated afterwards; decay windows are recomputed from it on recovery.
type BlockRecord struct {
	BuildingID int64
	CreatedAt  int64 // epoch seconds
}

// UserPrefs is the per-user persisted preference blob.
type UserPrefs struct {
	// DefaultSkins maps item/entity ids to the skin a new placement
	// should default to.
	DefaultSkins map[uint64]uint64
}

// NewUserPrefs returns an empty preference blob.
func NewUserPrefs() *UserPrefs {
	return &UserPrefs{DefaultSkins: make(map[uint64]uint64)}
}

// encodeBlockRecord serializes a BlockRecord to bytes using gob.
func encodeBlockRecord(rec *BlockRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBlockRecord deserializes bytes back into a BlockRecord.
func decodeBlockRecord(data []byte) (*BlockRecord, error) {
	var rec BlockRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// encodeUserPrefs serializes UserPrefs to bytes using gob.
func encodeUserPrefs(p *UserPrefs) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeUserPrefs deserializes bytes back into UserPrefs.
func decodeUserPrefs(data []byte) (*UserPrefs, error) {
	var p UserPrefs
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, err
	}
	if p.DefaultSkins == nil {
		p.DefaultSkins = make(map[uint64]uint64)
	}
	return &p, nil
}
