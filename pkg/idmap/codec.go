package idmap

import (
	"context"
	"fmt"

	"github.com/marmos91/dittosync/internal/protocol/wire"
)

// Catalog wire format, per table:
//
//	entry*      := id:int32 name_len:uint8 name:name_len bytes
//	terminator  := id:int32 == 0
//
// The terminator is unambiguous because id 0 is never recorded. There is no
// per-table presence marker: both peers must agree through configuration on
// which tables are sent.

// encodeTable writes every record of t in insertion order, then the
// terminator.
func encodeTable(w ChannelWriter, t *Table) error {
	for _, r := range t.records {
		if len(r.Name) > wire.MaxNameLength {
			return fmt.Errorf("%s %d: %w", t.kind, r.SourceID, ErrNameTooLong)
		}
		if err := w.WriteInt32(int32(r.SourceID)); err != nil {
			return fmt.Errorf("%s catalog: %w", t.kind, err)
		}
		if err := w.WriteByte(byte(len(r.Name))); err != nil {
			return fmt.Errorf("%s catalog: %w", t.kind, err)
		}
		if err := w.WriteBytes([]byte(r.Name)); err != nil {
			return fmt.Errorf("%s catalog: %w", t.kind, err)
		}
	}
	if err := w.WriteInt32(int32(RootID)); err != nil {
		return fmt.Errorf("%s catalog terminator: %w", t.kind, err)
	}
	return nil
}

// decodeTable reads entries into t until the terminator. Each new record is
// handed to resolve before the next entry is read.
//
// Names are opaque: any byte values are accepted. A repeated id keeps its
// first record, which is the one a linear lookup would find anyway.
func decodeTable(ctx context.Context, r ChannelReader, t *Table, resolve func(context.Context, *Record) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := r.ReadInt32()
		if err != nil {
			return fmt.Errorf("%s catalog: %w: %w", t.kind, ErrTruncatedCatalog, err)
		}
		if uint32(id) == RootID {
			return nil
		}

		length, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("%s catalog: %w: %w", t.kind, ErrTruncatedCatalog, err)
		}
		name, err := r.ReadBytes(int(length))
		if err != nil {
			return fmt.Errorf("%s catalog: %w: %w", t.kind, ErrTruncatedCatalog, err)
		}

		if t.find(uint32(id)) != nil {
			continue
		}

		rec := t.add(uint32(id), string(name))
		if err := resolve(ctx, rec); err != nil {
			return err
		}
	}
}
