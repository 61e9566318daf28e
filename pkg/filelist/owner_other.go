//go:build !unix

package filelist

import "io/fs"

// fileOwner reports no ownership on platforms without Unix stat data.
func fileOwner(_ fs.FileInfo) (uid, gid uint32, ok bool) {
	return 0, 0, false
}
