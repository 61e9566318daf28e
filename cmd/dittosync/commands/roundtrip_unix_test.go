//go:build unix

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittosync/pkg/filelist"
)

func TestExportImportRoundTrip(t *testing.T) {
	gid := uint32(os.Getgid())
	if gid == 0 {
		t.Skip("primary group 0 is never exchanged")
	}

	work := t.TempDir()
	tree := filepath.Join(work, "tree")
	require.NoError(t, os.MkdirAll(filepath.Join(tree, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "sub", "a.txt"), []byte("a"), 0o644))

	sender := writeConfig(t, work, "sender.yaml", fmt.Sprintf(
		"    users:\n      alice: %d\n    groups:\n      staff: %d", os.Getuid(), gid))
	receiver := writeConfig(t, work, "receiver.yaml",
		"    users:\n      alice: 7000\n    groups:\n      staff: 4242\n    member_groups: [4242]")

	catalog := filepath.Join(work, "data.cat")
	manifest := filepath.Join(work, "data.yaml")
	local := filepath.Join(work, "local.yaml")

	_, err := run(t, "export", tree, "--config", sender, "-o", "json",
		"--catalog", catalog, "--manifest", manifest)
	require.NoError(t, err)
	require.FileExists(t, catalog)
	require.FileExists(t, manifest)

	out, err := run(t, "import", "--config", receiver, "-o", "json",
		"--catalog", catalog, "--manifest", manifest, "--write-manifest", local)
	require.NoError(t, err)
	assert.Contains(t, out, `"gid_withheld": 0`)

	in, err := filelist.LoadManifest(manifest)
	require.NoError(t, err)
	mapped, err := filelist.LoadManifest(local)
	require.NoError(t, err)
	require.Equal(t, in.Len(), mapped.Len())

	for i, e := range mapped.Entries {
		assert.Equal(t, uint32(4242), e.GID, e.Path)
		// Not a superuser: owners stay numeric.
		assert.Equal(t, in.Entries[i].UID, e.UID, e.Path)
	}
}

func TestImportWithheldGroupKeepsGroupZero(t *testing.T) {
	work := t.TempDir()
	cfg := writeConfig(t, work, "receiver.yaml", "    groups:\n      staff: 4242")

	manifest := filepath.Join(work, "data.yaml")
	list := &filelist.List{Entries: []*filelist.Entry{
		{Path: "a", UID: 1, GID: 20},
		{Path: "b", UID: 1, GID: 0},
	}}
	require.NoError(t, filelist.SaveManifest(list, manifest))

	catalog := filepath.Join(work, "data.cat")
	writeCatalog(t, catalog, nil, []catalogEntry{{20, "staff"}})

	local := filepath.Join(work, "local.yaml")
	out, err := run(t, "import", "--config", cfg, "--catalog", catalog, "--manifest", manifest, "--write-manifest", local)
	require.NoError(t, err)
	assert.Contains(t, out, "keep their default group")

	mapped, err := filelist.LoadManifest(local)
	require.NoError(t, err)
	assert.Equal(t, filelist.NoID, mapped.Entries[0].GID)
	assert.Equal(t, uint32(0), mapped.Entries[1].GID)
}
