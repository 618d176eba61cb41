// Package byteutil encodes values into sortable bbolt keys.
package byteutil

import (
	"encoding/binary"
	"time"
)

// EncodeInt64ToBytes returns the big-endian form of id, so that keys sort
// numerically for non-negative values.
func EncodeInt64ToBytes(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func DecodeBytesToInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// TimeKey prefixes suffix with t in nanoseconds, giving chronological keys.
func TimeKey(t time.Time, suffix []byte) []byte {
	key := make([]byte, 0, 8+len(suffix))
	key = append(key, EncodeInt64ToBytes(t.UnixNano())...)
	return append(key, suffix...)
}
