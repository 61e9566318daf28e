package filelist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/telemetry"
)

// NoID marks an ownership field that must be left untouched on disk.
// It is the all-ones value, the same bit pattern chown(2) treats as -1.
const NoID uint32 = ^uint32(0)

// ErrEscapesRoot is returned when a manifest path, lexically or through a
// symlinked directory, points outside the destination root.
var ErrEscapesRoot = errors.New("path escapes destination root")

// ChownOptions controls how Chown applies ownership.
type ChownOptions struct {
	// SetUID enables changing the owner. Only meaningful with superuser
	// privilege; otherwise the owner is left as created.
	SetUID bool

	// SetGID enables changing the group.
	SetGID bool

	// IgnoreMissing skips entries that do not exist under the root.
	IgnoreMissing bool
}

// ChownResult summarizes a Chown pass.
type ChownResult struct {
	Changed int
	Skipped int
	Missing int
}

// Chown applies the ownership recorded in list to the files under root.
//
// Symlinks are changed with lchown. Every parent directory is resolved
// through symlinks and must stay inside root; the final component is never
// followed. The check and the chown are separate calls, so a tree being
// modified concurrently by another user can still race it.
func Chown(ctx context.Context, root string, list *List, opts ChownOptions) (res ChownResult, err error) {
	if !opts.SetUID && !opts.SetGID {
		res.Skipped = list.Len()
		return res, nil
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanChown,
		telemetry.Path(root), telemetry.Files(list.Len()))
	defer func() {
		telemetry.SetAttributes(ctx, telemetry.Records(res.Changed))
		telemetry.RecordError(ctx, err)
		span.End()
	}()

	realRoot, err := filepath.EvalSymlinks(filepath.Clean(root))
	if err != nil {
		return res, fmt.Errorf("resolve destination root: %w", err)
	}

	for _, e := range list.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		uid, gid := -1, -1
		if opts.SetUID && e.UID != NoID {
			if uid, err = chownID(e.UID, math.MaxInt); err != nil {
				return res, fmt.Errorf("chown %s: %w", e.Path, err)
			}
		}
		if opts.SetGID && e.GID != NoID {
			if gid, err = chownID(e.GID, math.MaxInt); err != nil {
				return res, fmt.Errorf("chown %s: %w", e.Path, err)
			}
		}
		if uid == -1 && gid == -1 {
			res.Skipped++
			continue
		}

		target, err := resolveUnder(realRoot, e.Path)
		if err == nil {
			err = os.Lchown(target, uid, gid)
		}
		if err != nil {
			if opts.IgnoreMissing && errors.Is(err, fs.ErrNotExist) {
				res.Missing++
				continue
			}
			return res, fmt.Errorf("chown %s: %w", e.Path, err)
		}
		logger.DebugCtx(ctx, "Applied ownership", logger.KeyPath, e.Path, logger.KeyUID, uid, logger.KeyGID, gid)
		res.Changed++
	}
	return res, nil
}

// chownID converts id to the int os.Lchown takes. An id above limit would
// wrap negative, which chown reads as "leave unchanged".
func chownID(id uint32, limit uint64) (int, error) {
	if uint64(id) > limit {
		return 0, fmt.Errorf("id %d does not fit in a native int", id)
	}
	return int(id), nil
}

// resolveUnder joins a manifest path onto realRoot, which must already be
// free of symlinks. The parent directory is resolved through symlinks and
// must stay under realRoot.
func resolveUnder(realRoot, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", rel, ErrEscapesRoot)
	}

	joined := filepath.Join(realRoot, clean)
	parent, err := filepath.EvalSymlinks(filepath.Dir(joined))
	if err != nil {
		return "", err
	}
	if !within(realRoot, parent) {
		return "", fmt.Errorf("%q: %w", rel, ErrEscapesRoot)
	}
	return filepath.Join(parent, filepath.Base(joined)), nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
