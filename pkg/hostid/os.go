package hostid

import (
	"context"
	"errors"
	"os/user"
	"strconv"

	"github.com/marmos91/dittosync/pkg/idmap"
)

// OSDirectory resolves names through the host's account and group
// databases (os/user), and reads the process credentials from the kernel.
type OSDirectory struct{}

// NewOSDirectory creates an OSDirectory.
func NewOSDirectory() *OSDirectory {
	return &OSDirectory{}
}

// LookupName returns the user or group name of id.
func (d *OSDirectory) LookupName(_ context.Context, kind idmap.Kind, id uint32) (string, bool, error) {
	key := strconv.FormatUint(uint64(id), 10)

	switch kind {
	case idmap.KindUser:
		u, err := user.LookupId(key)
		if err != nil {
			return "", false, notFound(err)
		}
		return u.Username, true, nil
	case idmap.KindGroup:
		g, err := user.LookupGroupId(key)
		if err != nil {
			return "", false, notFound(err)
		}
		return g.Name, true, nil
	default:
		return "", false, idmap.ErrUnknownKind
	}
}

// LookupID returns the uid or gid bound to name.
func (d *OSDirectory) LookupID(_ context.Context, kind idmap.Kind, name string) (uint32, bool, error) {
	var raw string

	switch kind {
	case idmap.KindUser:
		u, err := user.Lookup(name)
		if err != nil {
			return 0, false, notFound(err)
		}
		raw = u.Uid
	case idmap.KindGroup:
		g, err := user.LookupGroup(name)
		if err != nil {
			return 0, false, notFound(err)
		}
		raw = g.Gid
	default:
		return 0, false, idmap.ErrUnknownKind
	}

	// Non-numeric ids (Windows SIDs) have no uint32 form.
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false, nil
	}
	return uint32(id), true, nil
}

// ProcessGroups returns the supplementary groups of the process plus its
// effective gid.
func (d *OSDirectory) ProcessGroups(context.Context) ([]uint32, error) {
	return processGroups()
}

// IsSuperuser reports whether the effective uid is 0.
func (d *OSDirectory) IsSuperuser() bool {
	return effectiveUID() == 0
}

// notFound turns the os/user "unknown" errors into a plain miss. Any other
// error is a directory failure.
func notFound(err error) error {
	var (
		unknownUser    user.UnknownUserError
		unknownUserID  user.UnknownUserIdError
		unknownGroup   user.UnknownGroupError
		unknownGroupID user.UnknownGroupIdError
	)
	switch {
	case errors.As(err, &unknownUser),
		errors.As(err, &unknownUserID),
		errors.As(err, &unknownGroup),
		errors.As(err, &unknownGroupID):
		return nil
	}
	return err
}
