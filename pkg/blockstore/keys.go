package blockstore

import (
	"encoding/binary"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Bucket name constants for bbolt storage.
var (
	bucketMeta      = []byte("meta")
	bucketBlocks    = []byte("blocks")
	bucketUserPrefs = []byte("userprefs")
)

// Meta key constants.
var (
	keyVersion   = []byte("version")
	keySavedAt   = []byte("savedat")
	keyBlockRows = []byte("blockrows")
)

// idToKey converts an entity id to an 8-byte big-endian key so ids sort
// numerically under a bbolt cursor.
func idToKey(id world.EntityID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// keyToID converts an 8-byte big-endian key back to an entity id.
func keyToID(b []byte) world.EntityID {
	return world.EntityID(binary.BigEndian.Uint64(b))
}

// userToKey converts a user id to an 8-byte big-endian key.
func userToKey(id world.UserID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// intToKey converts an int64 to an 8-byte big-endian value.
func intToKey(n int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

// keyToInt converts an 8-byte big-endian value back to an int64.
func keyToInt(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
