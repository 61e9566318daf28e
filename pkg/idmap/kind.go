// Package idmap translates file ownership between two replication peers.
//
// A sender records every numeric uid and gid it sees in outgoing file
// metadata together with the account or group name the id has on the
// sender's host. The resulting catalog is written to the session channel.
// The receiver reads the catalog, looks each name up on its own host, and
// rewrites the ownership of the incoming file list so that a file owned by
// "alice" on the sender is owned by "alice" on the receiver, whatever her
// numeric uid is on either side.
//
// Two rules protect the receiver:
//   - id 0 is never recorded, sent, or remapped
//   - unless the receiving process is superuser, a file is only given a group
//     the process itself belongs to; otherwise the group becomes NoGroup
//
// All state lives in a Session. Sessions are not safe for concurrent use;
// the exchange is a strictly sequential build, encode, decode, apply pass.
package idmap

import (
	"fmt"

	"github.com/marmos91/dittosync/pkg/filelist"
)

// Kind distinguishes user ids from group ids.
type Kind int

const (
	KindUser Kind = iota
	KindGroup
)

// Kinds lists the identifier kinds in wire order.
var Kinds = [...]Kind{KindUser, KindGroup}

// String returns the short label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "uid"
	case KindGroup:
		return "gid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindUser || k == KindGroup
}

const (
	// RootID is the superuser id. It is never mapped.
	RootID uint32 = 0

	// NoGroup means "do not assign group ownership". A resolved group that
	// the receiving process may not adopt is replaced by this value.
	NoGroup = filelist.NoID
)
