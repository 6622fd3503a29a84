package wire

// Sizing helpers mirror every Writer operation so encoded length is known
// exactly before allocation.

// SizeVarint returns the encoded length of a varint.
func SizeVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// SizeTag returns the encoded length of a field key.
func SizeTag(field int) int {
	return SizeVarint(Tag(field, 0))
}

// SizeSint32 returns the encoded length of a zigzag signed 32-bit integer.
func SizeSint32(v int32) int {
	return SizeVarint(Zigzag32(v))
}

// SizeSint64 returns the encoded length of a zigzag signed 64-bit integer.
func SizeSint64(v int64) int {
	return SizeVarint(Zigzag64(v))
}

// SizeBytes returns the encoded length of a length-delimited payload of n
// bytes, including the length prefix.
func SizeBytes(n int) int {
	return SizeVarint(uint64(n)) + n
}

// SizeStringField returns the full encoded length of a string field,
// key included. Zero-valued fields are omitted on encode and size zero.
func SizeStringField(field int, s string) int {
	if s == "" {
		return 0
	}
	return SizeTag(field) + SizeBytes(len(s))
}

// SizeBytesField returns the full encoded length of a bytes field.
func SizeBytesField(field int, b []byte) int {
	if len(b) == 0 {
		return 0
	}
	return SizeTag(field) + SizeBytes(len(b))
}

// SizeUint64Field returns the full encoded length of a varint field.
func SizeUint64Field(field int, v uint64) int {
	if v == 0 {
		return 0
	}
	return SizeTag(field) + SizeVarint(v)
}

// SizeSint32Field returns the full encoded length of a zigzag sint32 field.
func SizeSint32Field(field int, v int32) int {
	if v == 0 {
		return 0
	}
	return SizeTag(field) + SizeSint32(v)
}
