package idmap

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittosync/internal/protocol/wire"
)

func noResolve(context.Context, *Record) error { return nil }

func TestEncodeTableWireBytes(t *testing.T) {
	tbl := NewTable(KindUser)
	tbl.add(501, "alice")
	tbl.add(502, "bob")

	w, bytesOf := channel(t)
	require.NoError(t, encodeTable(w, tbl))

	want := []byte{
		0xF5, 0x01, 0x00, 0x00, 5, 'a', 'l', 'i', 'c', 'e',
		0xF6, 0x01, 0x00, 0x00, 3, 'b', 'o', 'b',
		0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, bytesOf())
}

func TestEncodeTableBigEndian(t *testing.T) {
	tbl := NewTable(KindGroup)
	tbl.add(20, "staff")

	var buf bytes.Buffer
	w := wire.NewWriter(&buf, binary.BigEndian)
	require.NoError(t, encodeTable(w, tbl))
	require.NoError(t, w.Flush())

	assert.Equal(t, []byte{0, 0, 0, 20, 5, 's', 't', 'a', 'f', 'f', 0, 0, 0, 0}, buf.Bytes())
}

func TestEncodeEmptyTable(t *testing.T) {
	w, bytesOf := channel(t)
	require.NoError(t, encodeTable(w, NewTable(KindUser)))
	assert.Equal(t, []byte{0, 0, 0, 0}, bytesOf())
}

func TestEncodeTableNameTooLong(t *testing.T) {
	tbl := NewTable(KindUser)
	tbl.add(7, strings.Repeat("x", 256))

	w, _ := channel(t)
	err := encodeTable(w, tbl)
	assert.ErrorIs(t, err, ErrNameTooLong)
}

type failingWriter struct{ err error }

func (f failingWriter) WriteInt32(int32) error  { return f.err }
func (f failingWriter) WriteByte(byte) error    { return f.err }
func (f failingWriter) WriteBytes([]byte) error { return f.err }

func TestEncodeTableChannelError(t *testing.T) {
	tbl := NewTable(KindUser)
	tbl.add(1, "daemon")

	boom := errors.New("broken pipe")
	err := encodeTable(failingWriter{boom}, tbl)
	assert.ErrorIs(t, err, boom)
}

func TestDecodeTable(t *testing.T) {
	data := catalog(501, "alice", 502, "bob")
	tbl := NewTable(KindUser)

	var seen []string
	resolve := func(_ context.Context, r *Record) error {
		// Resolution happens before the next entry is read.
		assert.Equal(t, len(seen)+1, tbl.Len())
		seen = append(seen, r.Name)
		r.ResolvedID = r.SourceID + 1000
		return nil
	}

	require.NoError(t, decodeTable(context.Background(), reader(data), tbl, resolve))
	assert.Equal(t, []string{"alice", "bob"}, seen)
	assert.Equal(t, []Record{
		{SourceID: 501, ResolvedID: 1501, Name: "alice"},
		{SourceID: 502, ResolvedID: 1502, Name: "bob"},
	}, tbl.Records())
}

func TestDecodeTableStopsAtTerminator(t *testing.T) {
	data := append(catalog(10, "a"), catalog(20, "b")...)
	r := reader(data)

	first := NewTable(KindUser)
	require.NoError(t, decodeTable(context.Background(), r, first, noResolve))
	second := NewTable(KindGroup)
	require.NoError(t, decodeTable(context.Background(), r, second, noResolve))

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
	assert.Equal(t, "b", second.Records()[0].Name)
}

func TestDecodeTableOpaqueNames(t *testing.T) {
	name := "a\x00b\xff"
	tbl := NewTable(KindUser)
	require.NoError(t, decodeTable(context.Background(), reader(catalog(3, name)), tbl, noResolve))
	assert.Equal(t, name, tbl.Records()[0].Name)
}

func TestDecodeTableDuplicateKeepsFirst(t *testing.T) {
	tbl := NewTable(KindUser)
	calls := 0
	resolve := func(context.Context, *Record) error { calls++; return nil }

	require.NoError(t, decodeTable(context.Background(), reader(catalog(5, "first", 5, "second")), tbl, resolve))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "first", tbl.Records()[0].Name)
	assert.Equal(t, 1, calls)
}

func TestDecodeTableTruncated(t *testing.T) {
	full := catalog(501, "alice")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"partial id", full[:2]},
		{"missing length", full[:4]},
		{"partial name", full[:7]},
		{"missing terminator", full[:len(full)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeTable(context.Background(), reader(tt.data), NewTable(KindUser), noResolve)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncatedCatalog)
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF))
		})
	}
}

func TestDecodeTableResolveError(t *testing.T) {
	tbl := NewTable(KindUser)
	err := decodeTable(context.Background(), reader(catalog(1, "x")), tbl,
		func(context.Context, *Record) error { return errDirectoryDown })
	assert.ErrorIs(t, err, errDirectoryDown)
}

func TestDecodeTableCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := decodeTable(ctx, reader(catalog(1, "x")), NewTable(KindUser), noResolve)
	assert.ErrorIs(t, err, context.Canceled)
}
