package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader reads channel primitives from an underlying stream.
//
// A short read is always reported as io.ErrUnexpectedEOF (wrapped), so a
// stream that ends in the middle of a value is distinguishable from one
// that ends cleanly between values (io.EOF).
type Reader struct {
	r       *bufio.Reader
	order   binary.ByteOrder
	scratch [4]byte
	read    int64
}

// NewReader creates a Reader. A nil order selects little-endian.
func NewReader(r io.Reader, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{
		r:     bufio.NewReader(r),
		order: order,
	}
}

// ReadInt32 decodes a signed 32-bit integer in the reader's byte order.
func (r *Reader) ReadInt32() (int32, error) {
	n, err := io.ReadFull(r.r, r.scratch[:])
	r.read += int64(n)
	if err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return int32(r.order.Uint32(r.scratch[:])), nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("read byte: %w", err)
	}
	r.read++
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read bytes: negative length %d", n)
	}
	data := make([]byte, n)
	got, err := io.ReadFull(r.r, data)
	r.read += int64(got)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read bytes: %w", err)
	}
	return data, nil
}

// BytesRead returns the number of bytes consumed so far.
func (r *Reader) BytesRead() int64 {
	return r.read
}
