package idmap

import "errors"

var (
	// ErrAlreadyDecoded is returned when a session's incoming catalogs are
	// decoded a second time without a Reset.
	ErrAlreadyDecoded = errors.New("catalogs already decoded for this session")

	// ErrNameTooLong is returned for names that do not fit the one-byte
	// length prefix of the catalog format.
	ErrNameTooLong = errors.New("name longer than 255 bytes")

	// ErrUnknownKind is returned for a Kind other than KindUser or KindGroup.
	ErrUnknownKind = errors.New("unknown identifier kind")

	// ErrTruncatedCatalog wraps channel failures that occur before a
	// table's terminator has been read.
	ErrTruncatedCatalog = errors.New("catalog truncated before terminator")
)
