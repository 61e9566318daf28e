//go:build unix

package filelist

import (
	"io/fs"
	"syscall"
)

// fileOwner extracts the numeric owner and group from platform stat data.
func fileOwner(fi fs.FileInfo) (uid, gid uint32, ok bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return st.Uid, st.Gid, true
}
