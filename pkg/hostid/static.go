package hostid

import (
	"context"
	"maps"
	"slices"

	"github.com/marmos91/dittosync/pkg/idmap"
)

// StaticConfig describes a fixed identity database.
//
// This is a local type so the package does not depend on pkg/config. It
// mirrors config.StaticIdentityConfig.
type StaticConfig struct {
	// Users maps user names to uids.
	Users map[string]uint32

	// Groups maps group names to gids.
	Groups map[string]uint32

	// MemberGroups is the group set reported for the process.
	MemberGroups []uint32

	// Superuser is reported by IsSuperuser.
	Superuser bool
}

// StaticDirectory implements idmap.Directory over a StaticConfig.
//
// It is meant for tests, containers without an account database, and
// replaying a catalog as if on another host. Reverse lookups pick the
// lexically first name when several names share an id.
type StaticDirectory struct {
	users     map[string]uint32
	groups    map[string]uint32
	userNames map[uint32]string
	grpNames  map[uint32]string
	member    []uint32
	superuser bool
}

// NewStaticDirectory creates a StaticDirectory. cfg is copied.
func NewStaticDirectory(cfg StaticConfig) *StaticDirectory {
	d := &StaticDirectory{
		users:     maps.Clone(cfg.Users),
		groups:    maps.Clone(cfg.Groups),
		member:    slices.Clone(cfg.MemberGroups),
		superuser: cfg.Superuser,
	}
	if d.users == nil {
		d.users = make(map[string]uint32)
	}
	if d.groups == nil {
		d.groups = make(map[string]uint32)
	}
	d.userNames = reverse(d.users)
	d.grpNames = reverse(d.groups)
	return d
}

func reverse(m map[string]uint32) map[uint32]string {
	out := make(map[uint32]string, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if _, ok := out[m[name]]; !ok {
			out[m[name]] = name
		}
	}
	return out
}

// LookupName implements idmap.Directory.
func (d *StaticDirectory) LookupName(_ context.Context, kind idmap.Kind, id uint32) (string, bool, error) {
	switch kind {
	case idmap.KindUser:
		name, ok := d.userNames[id]
		return name, ok, nil
	case idmap.KindGroup:
		name, ok := d.grpNames[id]
		return name, ok, nil
	default:
		return "", false, idmap.ErrUnknownKind
	}
}

// LookupID implements idmap.Directory.
func (d *StaticDirectory) LookupID(_ context.Context, kind idmap.Kind, name string) (uint32, bool, error) {
	switch kind {
	case idmap.KindUser:
		id, ok := d.users[name]
		return id, ok, nil
	case idmap.KindGroup:
		id, ok := d.groups[name]
		return id, ok, nil
	default:
		return 0, false, idmap.ErrUnknownKind
	}
}

// ProcessGroups implements idmap.Directory.
func (d *StaticDirectory) ProcessGroups(context.Context) ([]uint32, error) {
	return slices.Clone(d.member), nil
}

// IsSuperuser implements idmap.Directory.
func (d *StaticDirectory) IsSuperuser() bool {
	return d.superuser
}
