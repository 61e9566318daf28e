package idmap

import (
	"context"
	"fmt"
)

// Outcome classifies how a record was resolved.
type Outcome string

const (
	// OutcomeMapped means the name exists locally under a nonzero id.
	OutcomeMapped Outcome = "mapped"

	// OutcomeNumeric means the name is unknown locally (or maps to 0) and
	// the peer's numeric id is used as-is.
	OutcomeNumeric Outcome = "numeric"

	// OutcomeNoGroup means the group was withheld because the process is
	// not a member of it.
	OutcomeNoGroup Outcome = "no_group"

	// OutcomePassthrough means the id was 0 and left alone.
	OutcomePassthrough Outcome = "passthrough"
)

// Resolver turns a peer's (id, name) pair into a local id.
type Resolver struct {
	dir        Directory
	membership *Membership
	superuser  bool
}

// NewResolver creates a Resolver. membership may be nil when superuser is
// true, since the membership check is skipped for the superuser.
func NewResolver(dir Directory, membership *Membership, superuser bool) *Resolver {
	if membership == nil {
		membership = NewMembership(dir)
	}
	return &Resolver{dir: dir, membership: membership, superuser: superuser}
}

// Resolve returns the local id for a record received from the peer.
//
// Users: the local id of name when it exists and is nonzero, otherwise
// sourceID. Groups: the same choice, after which a non-superuser process
// gets NoGroup for any group it is not a member of.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, sourceID uint32, name string) (uint32, Outcome, error) {
	if !kind.Valid() {
		return 0, "", fmt.Errorf("resolve %d: %w", sourceID, ErrUnknownKind)
	}
	if sourceID == RootID {
		return RootID, OutcomePassthrough, nil
	}

	resolved, outcome := sourceID, OutcomeNumeric
	local, found, err := r.dir.LookupID(ctx, kind, name)
	if err != nil {
		return 0, "", fmt.Errorf("lookup %s %q: %w", kind, name, err)
	}
	if found && local != RootID {
		resolved, outcome = local, OutcomeMapped
	}

	if kind == KindGroup {
		adopted, err := r.adoptGroup(ctx, resolved)
		if err != nil {
			return 0, "", err
		}
		if adopted == NoGroup {
			return NoGroup, OutcomeNoGroup, nil
		}
	}
	return resolved, outcome, nil
}

// adoptGroup returns gid if the process may assign it, NoGroup otherwise.
func (r *Resolver) adoptGroup(ctx context.Context, gid uint32) (uint32, error) {
	if r.superuser {
		return gid, nil
	}
	member, err := r.membership.Contains(ctx, gid)
	if err != nil {
		return 0, err
	}
	if !member {
		return NoGroup, nil
	}
	return gid, nil
}
