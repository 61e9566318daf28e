package idmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	dir := newFakeDirectory()
	dir.users["alice"] = 700
	dir.users["zero"] = 0
	dir.groups["staff"] = 800
	dir.groups["users"] = 100
	dir.member = []uint32{100, 200}

	tests := []struct {
		name      string
		superuser bool
		kind      Kind
		sourceID  uint32
		recName   string
		want      uint32
		outcome   Outcome
	}{
		{"user mapped", false, KindUser, 501, "alice", 700, OutcomeMapped},
		{"user unknown keeps id", false, KindUser, 501, "nobody-here", 501, OutcomeNumeric},
		{"user mapping to zero keeps id", false, KindUser, 501, "zero", 501, OutcomeNumeric},
		{"root passthrough", false, KindUser, 0, "root", 0, OutcomePassthrough},
		{"group member", false, KindGroup, 9, "users", 100, OutcomeMapped},
		{"group not member", false, KindGroup, 9, "staff", NoGroup, OutcomeNoGroup},
		{"group superuser", true, KindGroup, 9, "staff", 800, OutcomeMapped},
		{"group unknown member", false, KindGroup, 200, "x", 200, OutcomeNumeric},
		{"group unknown not member", false, KindGroup, 201, "x", NoGroup, OutcomeNoGroup},
		{"group root passthrough", false, KindGroup, 0, "wheel", 0, OutcomePassthrough},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(dir, nil, tt.superuser)
			got, outcome, err := r.Resolve(context.Background(), tt.kind, tt.sourceID, tt.recName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestResolveUnknownKind(t *testing.T) {
	r := NewResolver(newFakeDirectory(), nil, false)
	_, _, err := r.Resolve(context.Background(), Kind(5), 1, "x")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestMembership(t *testing.T) {
	dir := newFakeDirectory()
	dir.member = []uint32{10, 20}
	m := NewMembership(dir)
	ctx := context.Background()

	for _, gid := range []uint32{10, 10, 30, 20, 30} {
		_, err := m.Contains(ctx, gid)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, dir.groupsCalls)

	ok, err := m.Contains(ctx, 20)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.Contains(ctx, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	// The loaded set is a private copy.
	dir.member[0] = 99
	ok, err = m.Contains(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMembershipLoadError(t *testing.T) {
	dir := newFakeDirectory()
	dir.groupsErr = errDirectoryDown
	m := NewMembership(dir)

	_, err := m.Contains(context.Background(), 1)
	assert.ErrorIs(t, err, errDirectoryDown)

	dir.groupsErr = nil
	dir.member = []uint32{1}
	ok, err := m.Contains(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok, "a failed load is retried")
}
