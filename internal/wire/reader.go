package wire

// Reader decodes wire-format primitives from a byte buffer, advancing an
// internal cursor. It never retains or mutates the buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader builds a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Varint reads an unsigned base-128 little-endian integer of up to 64 bits,
// consuming between 1 and 10 bytes.
func (r *Reader) Varint() (uint64, error) {
	var value uint64
	var shift uint
	for i := 0; i < MaxVarintLen; i++ {
		if r.pos >= len(r.buf) {
			return 0, ErrOverrun
		}
		b := r.buf[r.pos]
		r.pos++
		if shift == 63 && b > 1 {
			return 0, ErrVarintOverflow
		}
		value |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return value, nil
		}
		shift += 7
	}
	return 0, ErrVarintOverflow
}

// Tag reads a field key and splits it into field number and wire type.
func (r *Reader) Tag() (field int, wireType int, err error) {
	tag, err := r.Varint()
	if err != nil {
		return 0, 0, err
	}
	field, wireType = SplitTag(tag)
	return field, wireType, nil
}

// Uint32 reads a varint truncated to 32 bits.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Varint()
	return uint32(v), err
}

// Int32 reads a varint interpreted as a signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Varint()
	return int32(v), err
}

// Int64 reads a varint interpreted as a signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Varint()
	return int64(v), err
}

// Bool reads a varint interpreted as a boolean.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Varint()
	return v != 0, err
}

// Sint32 reads a zigzag-encoded signed 32-bit integer.
func (r *Reader) Sint32() (int32, error) {
	v, err := r.Varint()
	if err != nil {
		return 0, err
	}
	return Unzigzag32(v), nil
}

// Sint64 reads a zigzag-encoded signed 64-bit integer.
func (r *Reader) Sint64() (int64, error) {
	v, err := r.Varint()
	if err != nil {
		return 0, err
	}
	return Unzigzag64(v), nil
}

// Fixed32 reads four little-endian bytes with no value interpretation.
func (r *Reader) Fixed32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrOverrun
	}
	b := r.buf[r.pos:]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	r.pos += 4
	return v, nil
}

// Fixed64 reads eight little-endian bytes with no value interpretation.
func (r *Reader) Fixed64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, ErrOverrun
	}
	b := r.buf[r.pos:]
	v := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	r.pos += 8
	return v, nil
}

// Bytes reads a varint length prefix followed by exactly that many bytes.
// The returned slice is a fresh copy.
func (r *Reader) Bytes() ([]byte, error) {
	raw, err := r.bytesView()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// String reads a length-delimited field as a UTF-8 string.
func (r *Reader) String() (string, error) {
	raw, err := r.bytesView()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Delimited returns a length-delimited payload as a view into the underlying
// buffer, for recursive decode of nested messages without copying.
func (r *Reader) Delimited() ([]byte, error) {
	return r.bytesView()
}

// bytesView returns the delimited payload without copying. The view is only
// valid until the caller releases the underlying buffer.
func (r *Reader) bytesView() ([]byte, error) {
	length, err := r.Varint()
	if err != nil {
		return nil, err
	}
	if length > uint64(r.Remaining()) {
		return nil, ErrOverrun
	}
	raw := r.buf[r.pos : r.pos+int(length)]
	r.pos += int(length)
	return raw, nil
}

// Skip consumes and discards a value of the given wire type without
// allocating, so unknown field numbers are ignored rather than fatal.
func (r *Reader) Skip(wireType int) error {
	switch wireType {
	case TypeVarint:
		_, err := r.Varint()
		return err
	case TypeFixed64:
		if r.Remaining() < 8 {
			return ErrOverrun
		}
		r.pos += 8
		return nil
	case TypeBytes:
		length, err := r.Varint()
		if err != nil {
			return err
		}
		if length > uint64(r.Remaining()) {
			return ErrOverrun
		}
		r.pos += int(length)
		return nil
	case TypeStartGroup:
		for {
			field, inner, err := r.Tag()
			if err != nil {
				return err
			}
			_ = field
			if inner == TypeEndGroup {
				return nil
			}
			if err := r.Skip(inner); err != nil {
				return err
			}
		}
	case TypeEndGroup:
		return nil
	case TypeFixed32:
		if r.Remaining() < 4 {
			return ErrOverrun
		}
		r.pos += 4
		return nil
	default:
		return invalidWireType(wireType)
	}
}
