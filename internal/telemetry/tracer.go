package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for identity-mapping spans.
const (
	AttrSessionID = "session.id"
	AttrRole      = "session.role"
	AttrKind      = "idmap.kind"
	AttrRecords   = "idmap.records"
	AttrOutcome   = "idmap.outcome"
	AttrSourceID  = "idmap.source_id"
	AttrFiles     = "idmap.files"
	AttrSuperuser = "idmap.superuser"
	AttrBytes     = "idmap.bytes"
	AttrPath      = "fs.path"
)

// Span names.
// Format: <component>.<operation>
const (
	SpanEncodeCatalogs = "idmap.encode_catalogs"
	SpanDecodeCatalogs = "idmap.decode_catalogs"
	SpanApplyBatch     = "idmap.apply_batch"
	SpanRecordList     = "idmap.record_list"
	SpanScan           = "filelist.scan"
	SpanChown          = "filelist.chown"
)

// SessionID returns an attribute for the session identifier
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// Role returns an attribute for the session role (sender or receiver)
func Role(role string) attribute.KeyValue {
	return attribute.String(AttrRole, role)
}

// Kind returns an attribute for the identity kind (uid or gid)
func Kind(kind string) attribute.KeyValue {
	return attribute.String(AttrKind, kind)
}

// Records returns an attribute for a record count
func Records(n int) attribute.KeyValue {
	return attribute.Int(AttrRecords, n)
}

// Files returns an attribute for a file count
func Files(n int) attribute.KeyValue {
	return attribute.Int(AttrFiles, n)
}

// Superuser returns an attribute for the privilege level of the process
func Superuser(v bool) attribute.KeyValue {
	return attribute.Bool(AttrSuperuser, v)
}

// SourceID returns an attribute for a peer's numeric id
func SourceID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrSourceID, int64(id))
}

// Outcome returns an attribute for how a record was resolved
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// Bytes returns an attribute for a byte count
func Bytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, n)
}

// Path returns an attribute for a filesystem path
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}
