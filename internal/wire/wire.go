package wire

import (
	"errors"
	"fmt"
)

// Wire types per the protobuf encoding. Groups are accepted by Skip for
// forward compatibility but never produced by this schema.
const (
	TypeVarint     = 0
	TypeFixed64    = 1
	TypeBytes      = 2
	TypeStartGroup = 3
	TypeEndGroup   = 4
	TypeFixed32    = 5
)

// MaxVarintLen is the longest encoding of a 64-bit varint.
const MaxVarintLen = 10

var (
	// ErrOverrun reports a read past the end of the buffer.
	ErrOverrun = errors.New("wire: buffer overrun")
	// ErrVarintOverflow reports a varint longer than 64 bits.
	ErrVarintOverflow = errors.New("wire: varint overflows 64 bits")
)

// Tag packs a field number and wire type into a key varint.
func Tag(field int, wireType int) uint64 {
	return uint64(field)<<3 | uint64(wireType)
}

// SplitTag unpacks a key varint into field number and wire type.
func SplitTag(tag uint64) (field int, wireType int) {
	return int(tag >> 3), int(tag & 0x7)
}

// Zigzag32 maps a signed 32-bit integer onto an unsigned one so that
// small magnitudes of either sign encode compactly.
func Zigzag32(v int32) uint64 {
	return uint64(uint32(v<<1) ^ uint32(v>>31))
}

// Unzigzag32 inverts Zigzag32.
func Unzigzag32(v uint64) int32 {
	return int32(uint32(v)>>1) ^ -int32(uint32(v)&1)
}

// Zigzag64 maps a signed 64-bit integer onto an unsigned one.
func Zigzag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// Unzigzag64 inverts Zigzag64.
func Unzigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func invalidWireType(wireType int) error {
	return fmt.Errorf("wire: invalid wire type %d", wireType)
}
