// Package hostid provides idmap.Directory implementations backed by the
// host account database, by static configuration, and a TTL cache that
// wraps either.
package hostid

import (
	"fmt"
	"time"

	"github.com/marmos91/dittosync/pkg/idmap"
)

// Source names accepted by New.
const (
	SourceOS     = "os"
	SourceStatic = "static"
)

// Options selects and configures a Directory.
type Options struct {
	// Source is SourceOS or SourceStatic.
	Source string

	// CacheTTL wraps the directory in a CachedDirectory when positive.
	CacheTTL time.Duration

	// Static is used when Source is SourceStatic.
	Static StaticConfig
}

// New builds the Directory described by opts.
func New(opts Options) (idmap.Directory, error) {
	var dir idmap.Directory
	switch opts.Source {
	case "", SourceOS:
		dir = NewOSDirectory()
	case SourceStatic:
		dir = NewStaticDirectory(opts.Static)
	default:
		return nil, fmt.Errorf("unknown identity source %q", opts.Source)
	}

	if opts.CacheTTL > 0 {
		dir = NewCachedDirectory(dir, opts.CacheTTL)
	}
	return dir, nil
}
