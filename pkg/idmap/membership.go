package idmap

import (
	"context"
	"fmt"
	"slices"

	"github.com/marmos91/dittosync/internal/logger"
)

// Membership answers whether the current process belongs to a group.
//
// The group set is read from the Directory once, on first use, and kept for
// the life of the session. The most recent answer is memoized.
type Membership struct {
	dir    Directory
	groups []uint32
	loaded bool
	memo   memo
}

// NewMembership creates a Membership backed by dir.
func NewMembership(dir Directory) *Membership {
	return &Membership{dir: dir}
}

// Load reads the process group set if it has not been read yet.
func (m *Membership) Load(ctx context.Context) error {
	if m.loaded {
		return nil
	}

	groups, err := m.dir.ProcessGroups(ctx)
	if err != nil {
		return fmt.Errorf("enumerate process groups: %w", err)
	}

	m.groups = slices.Clone(groups)
	m.loaded = true
	m.memo.reset()

	logger.DebugCtx(ctx, "Process group set loaded", logger.KeyCount, len(m.groups), logger.KeyGroups, m.groups)
	return nil
}

// Contains reports whether the process belongs to gid, loading the group
// set on first call.
func (m *Membership) Contains(ctx context.Context, gid uint32) (bool, error) {
	if err := m.Load(ctx); err != nil {
		return false, err
	}
	return m.contains(gid), nil
}

// contains requires a prior Load.
func (m *Membership) contains(gid uint32) bool {
	if _, found, ok := m.memo.get(gid); ok {
		return found
	}
	found := slices.Contains(m.groups, gid)
	m.memo.put(gid, gid, found)
	return found
}

func (m *Membership) reset() {
	m.groups = nil
	m.loaded = false
	m.memo.reset()
}
