package wire

// Writer encodes wire-format primitives into a buffer. Pair it with the
// sizing helpers so encoding is single-pass: size the message, allocate once,
// then write without growing.
type Writer struct {
	buf []byte
}

// NewWriter builds a Writer with the given capacity pre-allocated.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Varint appends an unsigned base-128 little-endian integer.
func (w *Writer) Varint(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// Tag appends a field key.
func (w *Writer) Tag(field int, wireType int) {
	w.Varint(Tag(field, wireType))
}

// Sint32 appends a zigzag-encoded signed 32-bit integer.
func (w *Writer) Sint32(v int32) {
	w.Varint(Zigzag32(v))
}

// Sint64 appends a zigzag-encoded signed 64-bit integer.
func (w *Writer) Sint64(v int64) {
	w.Varint(Zigzag64(v))
}

// Fixed32 appends four little-endian bytes.
func (w *Writer) Fixed32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// Fixed64 appends eight little-endian bytes.
func (w *Writer) Fixed64(v uint64) {
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// BytesField appends a varint length prefix followed by the raw bytes.
func (w *Writer) BytesField(b []byte) {
	w.Varint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// String appends a varint length prefix followed by the UTF-8 bytes.
func (w *Writer) String(s string) {
	w.Varint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}
