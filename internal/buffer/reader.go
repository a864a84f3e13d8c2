// Package buffer provides a position-tracked cursor over an immutable byte
// slice with fixed-width little-endian reads. The binary catalog format
// addresses records by absolute file offset, so the cursor is freely
// seekable rather than sequential.
package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a read would pass the end of the buffer
// or a seek targets a position outside it.
var ErrOutOfBounds = errors.New("read past end of buffer")

// Reader is a seekable cursor over a byte slice. It never mutates the
// backing slice and has no side effects beyond its position.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total length of the backing buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("seek to %d (length %d): %w", offset, len(r.data), ErrOutOfBounds)
	}
	r.pos = offset
	return nil
}

// Read returns the next n bytes and advances the position. The returned
// slice aliases the backing buffer and must not be modified.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("read %d bytes at %d (length %d): %w", n, r.pos, len(r.data), ErrOutOfBounds)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads an unsigned little-endian 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads an unsigned little-endian 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI16 reads a signed little-endian 16-bit integer.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a signed little-endian 32-bit integer.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a signed little-endian 64-bit integer.
func (r *Reader) ReadI64() (int64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadBool reads a single byte and interprets any non-zero value as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadU8()
	return b != 0, err
}
