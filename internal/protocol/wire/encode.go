package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer writes channel primitives to an underlying stream.
type Writer struct {
	w       *bufio.Writer
	order   binary.ByteOrder
	scratch [4]byte
	written int64
}

// NewWriter creates a Writer. A nil order selects little-endian.
func NewWriter(w io.Writer, order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{
		w:     bufio.NewWriter(w),
		order: order,
	}
}

// WriteInt32 encodes a signed 32-bit integer in the writer's byte order.
func (w *Writer) WriteInt32(v int32) error {
	w.order.PutUint32(w.scratch[:], uint32(v))
	n, err := w.w.Write(w.scratch[:])
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("write int32: %w", err)
	}
	return nil
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	if err := w.w.WriteByte(b); err != nil {
		return fmt.Errorf("write byte: %w", err)
	}
	w.written++
	return nil
}

// WriteBytes writes data verbatim with no length prefix or terminator.
func (w *Writer) WriteBytes(data []byte) error {
	n, err := w.w.Write(data)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("write bytes: %w", err)
	}
	return nil
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// BytesWritten returns the number of bytes accepted so far, flushed or not.
func (w *Writer) BytesWritten() int64 {
	return w.written
}
