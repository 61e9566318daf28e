package logger

import "log/slog"

// Standard field keys. Use these consistently so logs can be queried.
const (
	// Tracing and session
	KeyTraceID   = "trace_id"
	KeySessionID = "session_id"
	KeyRole      = "role" // sender, receiver
	KeyPeer      = "peer"

	// Identity mapping
	KeyKind       = "kind" // uid, gid
	KeySourceID   = "source_id"
	KeyResolvedID = "resolved_id"
	KeyName       = "name"
	KeyUID        = "uid"
	KeyGID        = "gid"
	KeyGroups     = "groups"
	KeyOutcome    = "outcome"
	KeyRecords    = "records"

	// Files
	KeyPath  = "path"
	KeyCount = "count"
	KeyBytes = "bytes"

	// Operation metadata
	KeyOperation  = "operation"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeySource     = "source"
)

// Err returns an attribute for an error; nil errors produce an empty attr
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Kind returns an attribute for an identifier kind label.
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// SourceID returns an attribute for a peer-side identifier.
func SourceID(id uint32) slog.Attr {
	return slog.Uint64(KeySourceID, uint64(id))
}

// ResolvedID returns an attribute for a local identifier.
func ResolvedID(id uint32) slog.Attr {
	return slog.Uint64(KeyResolvedID, uint64(id))
}

// Name returns an attribute for a symbolic account or group name.
func Name(n string) slog.Attr {
	return slog.String(KeyName, n)
}

// Path returns an attribute for a file path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// DurationMs returns an attribute for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
