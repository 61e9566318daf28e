// Package filelist holds the file metadata records exchanged during a
// replication session.
//
// A List is built on the sending side by scanning a directory tree and is
// consumed on the receiving side, where ownership fields are rewritten in
// place by the identity mapper before being applied to disk.
package filelist

import (
	"io/fs"
	"time"
)

// Entry is the metadata of one file in a replication batch.
type Entry struct {
	// Path is relative to the scanned root and uses forward slashes.
	Path string `yaml:"path" json:"path"`

	// Mode carries the file type and permission bits.
	Mode fs.FileMode `yaml:"mode" json:"mode"`

	Size    int64     `yaml:"size" json:"size"`
	ModTime time.Time `yaml:"mtime" json:"mtime"`

	// UID and GID are the numeric owner and group. On the sender they are
	// the sender's own ids; after ApplyToBatch they are local ids.
	UID uint32 `yaml:"uid" json:"uid"`
	GID uint32 `yaml:"gid" json:"gid"`

	// LinkTarget is set for symbolic links.
	LinkTarget string `yaml:"link_target,omitempty" json:"link_target,omitempty"`
}

// List is an ordered batch of entries.
type List struct {
	// Root is the directory the list was scanned from (informational).
	Root string `yaml:"root" json:"root"`

	Entries []*Entry `yaml:"entries" json:"entries"`
}

// Len returns the number of entries.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Add appends an entry.
func (l *List) Add(e *Entry) {
	l.Entries = append(l.Entries, e)
}

// Owners returns the distinct uids and gids of the list in first-seen order.
func (l *List) Owners() (uids, gids []uint32) {
	seenU := make(map[uint32]struct{})
	seenG := make(map[uint32]struct{})
	for _, e := range l.Entries {
		if _, ok := seenU[e.UID]; !ok {
			seenU[e.UID] = struct{}{}
			uids = append(uids, e.UID)
		}
		if _, ok := seenG[e.GID]; !ok {
			seenG[e.GID] = struct{}{}
			gids = append(gids, e.GID)
		}
	}
	return uids, gids
}
