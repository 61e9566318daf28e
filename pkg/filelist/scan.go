package filelist

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/telemetry"
)

// Scan walks root and returns one entry per file, directory, and symlink
// below it (root itself is excluded). Symlinks are not followed.
//
// Entries are produced in lexical walk order so that files sharing an owner
// tend to be adjacent, which is what the mapper's single-slot memo relies on.
func Scan(ctx context.Context, root string) (*List, error) {
	root = filepath.Clean(root)

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanScan, telemetry.Path(root))
	defer span.End()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %q is not a directory", root)
	}

	list := &List{Root: root}
	var total int64

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		uid, gid, ok := fileOwner(fi)
		if !ok {
			logger.Debug("No ownership information", logger.KeyPath, rel)
		}

		entry := &Entry{
			Path:    filepath.ToSlash(rel),
			Mode:    fi.Mode(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			UID:     uid,
			GID:     gid,
		}

		if fi.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}
			entry.LinkTarget = target
		}

		list.Add(entry)
		total += entry.Size
		return nil
	})
	if err != nil {
		err = fmt.Errorf("scan %s: %w", root, err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.Files(list.Len()), telemetry.Bytes(total))

	logger.DebugCtx(ctx, "Scanned file list", logger.KeyPath, root, logger.KeyCount, list.Len(), logger.KeyBytes, total)
	return list, nil
}
