package idmap

// Metrics receives identity-mapping observations.
//
// A nil Metrics is valid and costs nothing; see pkg/metrics/prometheus for
// the Prometheus implementation.
type Metrics interface {
	// ObserveRecorded counts an id added to an outgoing table.
	ObserveRecorded(kind Kind)

	// ObserveResolution counts a decoded record by outcome.
	ObserveResolution(kind Kind, outcome Outcome)

	// ObserveApply reports one apply pass over a file batch for kind:
	// files rewritten and how the table's memo performed.
	ObserveApply(kind Kind, files int, memoHits, memoMisses uint64)
}

func observeRecorded(m Metrics, kind Kind) {
	if m != nil {
		m.ObserveRecorded(kind)
	}
}

func observeResolution(m Metrics, kind Kind, outcome Outcome) {
	if m != nil {
		m.ObserveResolution(kind, outcome)
	}
}

func observeApply(m Metrics, kind Kind, files int, hits, misses uint64) {
	if m != nil {
		m.ObserveApply(kind, files, hits, misses)
	}
}
