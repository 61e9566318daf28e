package idmap

// Record is one entry of a translation table.
type Record struct {
	// SourceID is the id as known to the table's owner: the sender's own id
	// on the sending side, the peer's id after decoding.
	SourceID uint32

	// ResolvedID is the id to use on this host. It equals SourceID until
	// the record is resolved.
	ResolvedID uint32

	// Name is the account or group name bound to SourceID when the record
	// was created.
	Name string
}

// Table is an append-only, insertion-ordered set of records keyed by
// SourceID. Insertion order is the wire order.
//
// Lookups are linear. A table holds one record per distinct owner in a file
// batch, which stays small; the single-slot memo covers the common case of
// consecutive files sharing an owner.
type Table struct {
	kind    Kind
	records []*Record
	memo    memo

	memoHits   uint64
	memoMisses uint64
}

// NewTable creates an empty table for kind.
func NewTable(kind Kind) *Table {
	return &Table{kind: kind}
}

// Kind returns the identifier kind of the table.
func (t *Table) Kind() Kind {
	return t.kind
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in insertion order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	for i, r := range t.records {
		out[i] = *r
	}
	return out
}

// Find returns the record for id.
func (t *Table) Find(id uint32) (Record, bool) {
	if r := t.find(id); r != nil {
		return *r, true
	}
	return Record{}, false
}

func (t *Table) find(id uint32) *Record {
	for _, r := range t.records {
		if r.SourceID == id {
			return r
		}
	}
	return nil
}

// add appends a record for id. The caller guarantees id is not present.
func (t *Table) add(id uint32, name string) *Record {
	r := &Record{SourceID: id, ResolvedID: id, Name: name}
	t.records = append(t.records, r)
	t.memo.reset()
	return r
}

// Match returns the resolved id for id, and whether id is in the table.
// An id absent from the table is returned unchanged.
//
// The last query is memoized. Consecutive files in a batch usually share
// an owner, so most calls are answered without scanning.
func (t *Table) Match(id uint32) (uint32, bool) {
	if out, found, ok := t.memo.get(id); ok {
		t.memoHits++
		return out, found
	}
	t.memoMisses++
	out, found := t.scan(id)
	t.memo.put(id, out, found)
	return out, found
}

// scan is Match without the memo.
func (t *Table) scan(id uint32) (uint32, bool) {
	if r := t.find(id); r != nil {
		return r.ResolvedID, true
	}
	return id, false
}

// MemoStats returns how many Match calls were answered by the memo and how
// many needed a scan.
func (t *Table) MemoStats() (hits, misses uint64) {
	return t.memoHits, t.memoMisses
}

func (t *Table) reset() {
	t.records = nil
	t.memo.reset()
	t.memoHits, t.memoMisses = 0, 0
}
