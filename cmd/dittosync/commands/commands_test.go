package commands

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittosync/internal/protocol/wire"
	"github.com/marmos91/dittosync/pkg/idmap"
)

// resetCommands puts every flag of the command tree back to its default
// and clears the state left by a previous run.
func resetCommands(t *testing.T) {
	t.Helper()
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	app.cfg = nil
	app.shutdownTracing = nil
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommands(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir, name, identity string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := fmt.Sprintf(`logging:
  level: ERROR
mapping:
  superuser: never
identity:
  source: static
  static:
%s
`, identity)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

type catalogEntry struct {
	id   int32
	name string
}

func writeCatalog(t *testing.T, path string, tables ...[]catalogEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := wire.NewWriter(f, binary.LittleEndian)
	for _, table := range tables {
		for _, e := range table {
			require.NoError(t, w.WriteInt32(e.id))
			require.NoError(t, w.WriteByte(byte(len(e.name))))
			require.NoError(t, w.WriteBytes([]byte(e.name)))
		}
		require.NoError(t, w.WriteInt32(0))
	}
	require.NoError(t, w.Flush())
}

func TestResolvePrintsMappings(t *testing.T) {
	work := t.TempDir()
	cfg := writeConfig(t, work, "receiver.yaml",
		"    users:\n      alice: 7000\n    groups:\n      staff: 4242\n    member_groups: [4242]")
	catalog := filepath.Join(work, "data.cat")
	writeCatalog(t, catalog,
		[]catalogEntry{{501, "alice"}, {502, "bob"}},
		[]catalogEntry{{20, "staff"}, {30, "wheel"}},
	)

	out, err := run(t, "resolve", "--config", cfg, "-o", "json", "--catalog", catalog)
	require.NoError(t, err)

	var rows []mappingRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []mappingRow{
		{Kind: idmap.KindUser.String(), PeerID: 501, Name: "alice", LocalID: 7000},
		{Kind: idmap.KindUser.String(), PeerID: 502, Name: "bob", LocalID: 502},
		{Kind: idmap.KindGroup.String(), PeerID: 20, Name: "staff", LocalID: 4242},
		{Kind: idmap.KindGroup.String(), PeerID: 30, Name: "wheel", LocalID: idmap.NoGroup, Withheld: true},
	}, rows)
}

func TestResolveTableMarksWithheldGroups(t *testing.T) {
	work := t.TempDir()
	cfg := writeConfig(t, work, "receiver.yaml", "    groups:\n      staff: 4242")
	catalog := filepath.Join(work, "data.cat")
	writeCatalog(t, catalog, nil, []catalogEntry{{20, "staff"}})

	out, err := run(t, "resolve", "--config", cfg, "--catalog", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "staff")
	assert.Contains(t, out, "(withheld)")
}

func TestResolveTruncatedCatalog(t *testing.T) {
	work := t.TempDir()
	cfg := writeConfig(t, work, "receiver.yaml", "    users:\n      alice: 7000")
	catalog := filepath.Join(work, "data.cat")
	writeCatalog(t, catalog, []catalogEntry{{501, "alice"}})

	_, err := run(t, "resolve", "--config", cfg, "--catalog", catalog)
	require.Error(t, err)
	assert.ErrorIs(t, err, idmap.ErrTruncatedCatalog)
}

func TestConfigValidate(t *testing.T) {
	work := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		cfg := writeConfig(t, work, "valid.yaml", "    users:\n      alice: 7000")
		out, err := run(t, "config", "validate", "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "Validation: OK")
		assert.Contains(t, out, "Byte order:    little")
		assert.Contains(t, out, "Identity source: static")
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(work, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mapping:\n  byte_order: middle\n"), 0o644))

		out, err := run(t, "config", "validate", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ByteOrder")
		assert.NotContains(t, out, "Validation: OK")
	})

	t.Run("static source without entries", func(t *testing.T) {
		path := filepath.Join(work, "empty-static.yaml")
		require.NoError(t, os.WriteFile(path, []byte("identity:\n  source: static\n"), 0o644))

		_, err := run(t, "config", "validate", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "identity.static")
	})
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	require.FileExists(t, path)

	_, err = run(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	_, err = run(t, "config", "validate", "--config", path)
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	work := t.TempDir()
	cfg := writeConfig(t, work, "show.yaml", "    users:\n      alice: 7000")

	out, err := run(t, "config", "show", "--config", cfg, "-o", "json")
	require.NoError(t, err)

	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Contains(t, shown, "Mapping")

	out, err = run(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "byte_order: little")
	assert.Contains(t, out, "source: static")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dittosync "+Version)
	assert.Contains(t, out, "Go version:")
}
