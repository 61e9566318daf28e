//go:build unix

package hostid

import (
	"fmt"
	"slices"

	"golang.org/x/sys/unix"
)

func processGroups() ([]uint32, error) {
	gids, err := unix.Getgroups()
	if err != nil {
		return nil, fmt.Errorf("getgroups: %w", err)
	}

	out := make([]uint32, 0, len(gids)+1)
	for _, g := range gids {
		out = append(out, uint32(g))
	}

	egid := uint32(unix.Getegid())
	if !slices.Contains(out, egid) {
		out = append(out, egid)
	}
	return out, nil
}

func effectiveUID() int {
	return unix.Geteuid()
}
