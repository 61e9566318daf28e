package idmap

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittosync/internal/protocol/wire"
)

// fakeDirectory is an in-memory Directory.
type fakeDirectory struct {
	users     map[string]uint32
	groups    map[string]uint32
	member    []uint32
	superuser bool

	lookupErr   error
	groupsErr   error
	groupsCalls int
	nameCalls   int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]uint32{}, groups: map[string]uint32{}}
}

func (d *fakeDirectory) table(kind Kind) map[string]uint32 {
	if kind == KindGroup {
		return d.groups
	}
	return d.users
}

func (d *fakeDirectory) LookupName(_ context.Context, kind Kind, id uint32) (string, bool, error) {
	d.nameCalls++
	if d.lookupErr != nil {
		return "", false, d.lookupErr
	}
	for name, v := range d.table(kind) {
		if v == id {
			return name, true, nil
		}
	}
	return "", false, nil
}

func (d *fakeDirectory) LookupID(_ context.Context, kind Kind, name string) (uint32, bool, error) {
	if d.lookupErr != nil {
		return 0, false, d.lookupErr
	}
	id, ok := d.table(kind)[name]
	return id, ok, nil
}

func (d *fakeDirectory) ProcessGroups(context.Context) ([]uint32, error) {
	d.groupsCalls++
	if d.groupsErr != nil {
		return nil, d.groupsErr
	}
	return d.member, nil
}

func (d *fakeDirectory) IsSuperuser() bool { return d.superuser }

// recordingMetrics counts observations.
type recordingMetrics struct {
	recorded    map[Kind]int
	resolutions map[Outcome]int
	applied     map[Kind]int
	hits        map[Kind]uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		recorded:    map[Kind]int{},
		resolutions: map[Outcome]int{},
		applied:     map[Kind]int{},
		hits:        map[Kind]uint64{},
	}
}

func (m *recordingMetrics) ObserveRecorded(kind Kind) { m.recorded[kind]++ }

func (m *recordingMetrics) ObserveResolution(_ Kind, outcome Outcome) { m.resolutions[outcome]++ }

func (m *recordingMetrics) ObserveApply(kind Kind, files int, hits, _ uint64) {
	m.applied[kind] += files
	m.hits[kind] += hits
}

var errDirectoryDown = errors.New("directory unavailable")

func boolPtr(v bool) *bool { return &v }

// channel returns a wire writer and a function that flushes it and hands
// back the written bytes.
func channel(t *testing.T) (*wire.Writer, func() []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := wire.NewWriter(&buf, binary.LittleEndian)
	return w, func() []byte {
		require.NoError(t, w.Flush())
		return buf.Bytes()
	}
}

func reader(data []byte) *wire.Reader {
	return wire.NewReader(bytes.NewReader(data), binary.LittleEndian)
}

// catalog builds the little-endian encoding of one table.
func catalog(entries ...any) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(entries); i += 2 {
		id := entries[i].(int)
		name := entries[i+1].(string)
		_ = binary.Write(&buf, binary.LittleEndian, int32(id))
		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)
	}
	_ = binary.Write(&buf, binary.LittleEndian, int32(0))
	return buf.Bytes()
}

func sourceIDs(t *Table) []uint32 {
	var ids []uint32
	for _, r := range t.Records() {
		ids = append(ids, r.SourceID)
	}
	return ids
}
