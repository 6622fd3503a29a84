// Package batch reads and writes framed batch files. A file is a sequence
// of frames, each a uvarint byte length followed by an encoded event batch.
package batch

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxFrameBytes rejects frames that cannot be a sane batch. Guards against
// reading a corrupt length prefix and allocating gigabytes.
const maxFrameBytes = 64 << 20

// Reader iterates frames of a batch file.
type Reader struct {
	f  *os.File
	br *bufio.Reader
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	return &Reader{f: f, br: bufio.NewReader(f)}, nil
}

// Next returns the next frame's payload, or io.EOF after the last frame.
func (r *Reader) Next() ([]byte, error) {
	length, err := binary.ReadUvarint(r.br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	if length > maxFrameBytes {
		return nil, fmt.Errorf("frame length %d exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

// Writer appends frames to a batch file.
type Writer struct {
	f  *os.File
	bw *bufio.Writer
}

func CreateWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create batch file: %w", err)
	}
	return &Writer{f: f, bw: bufio.NewWriter(f)}, nil
}

// Append writes one frame.
func (w *Writer) Append(blob []byte) error {
	var header [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(header[:], uint64(len(blob)))
	if _, err := w.bw.Write(header[:n]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.bw.Write(blob); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush batch file: %w", err)
	}
	return w.f.Close()
}
