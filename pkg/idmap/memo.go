package idmap

// memo caches the most recent answer of a lookup: the input, the output,
// and whether the output came from a real match.
//
// It carries no correctness weight: a miss always falls through to the full
// computation, and reset may be called at any time. A query with a
// different input bypasses the slot entirely; only put replaces it.
type memo struct {
	in, out uint32
	found   bool
	valid   bool
}

func (m *memo) get(in uint32) (out uint32, found, ok bool) {
	if m.valid && m.in == in {
		return m.out, m.found, true
	}
	return 0, false, false
}

func (m *memo) put(in, out uint32, found bool) {
	*m = memo{in: in, out: out, found: found, valid: true}
}

func (m *memo) reset() {
	*m = memo{}
}
