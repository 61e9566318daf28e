package commands

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittosync/internal/cli/output"
	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/internal/protocol/wire"
	"github.com/marmos91/dittosync/pkg/filelist"
	"github.com/marmos91/dittosync/pkg/idmap"
)

var importFlags struct {
	catalog       string
	manifest      string
	dest          string
	writeManifest string
	ignoreMissing bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Map a peer's catalog onto local ids and apply it",
	Long: `Read a catalog and manifest produced by "dittosync export" on another host,
resolve every name against the local account database, and rewrite the
manifest ownership to local ids.

Owners are only rewritten when running as superuser. Unless running as
superuser, a group the process does not belong to is withheld: the file
keeps whatever group it gets on creation.

With --dest the resulting ownership is applied to the files under that
directory. With --write-manifest the rewritten manifest is saved.

Examples:
  dittosync import --catalog data.cat --manifest data.yaml --dest /srv/data
  dittosync import --catalog data.cat --manifest data.yaml --write-manifest local.yaml -o json`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFlags.catalog, "catalog", "", "Catalog file (required)")
	importCmd.Flags().StringVar(&importFlags.manifest, "manifest", "", "Manifest file (required)")
	importCmd.Flags().StringVar(&importFlags.dest, "dest", "", "Apply ownership to files under this directory")
	importCmd.Flags().StringVar(&importFlags.writeManifest, "write-manifest", "", "Save the rewritten manifest to this file")
	importCmd.Flags().BoolVar(&importFlags.ignoreMissing, "ignore-missing", false, "Skip manifest entries missing under --dest")
	_ = importCmd.MarkFlagRequired("catalog")
	_ = importCmd.MarkFlagRequired("manifest")
}

// importResult is printed by import.
type importResult struct {
	Session     string `json:"session" yaml:"session"`
	Superuser   bool   `json:"superuser" yaml:"superuser"`
	Files       int    `json:"files" yaml:"files"`
	Skipped     bool   `json:"skipped" yaml:"skipped"`
	UIDChanged  int    `json:"uid_changed" yaml:"uid_changed"`
	GIDChanged  int    `json:"gid_changed" yaml:"gid_changed"`
	GIDWithheld int    `json:"gid_withheld" yaml:"gid_withheld"`
	Chowned     int    `json:"chowned" yaml:"chowned"`
	Missing     int    `json:"missing" yaml:"missing"`
}

func (r importResult) Headers() []string { return []string{"Field", "Value"} }

func (r importResult) Rows() [][]string {
	return [][]string{
		{"Session", r.Session},
		{"Superuser", strconv.FormatBool(r.Superuser)},
		{"Files", strconv.Itoa(r.Files)},
		{"Skipped", strconv.FormatBool(r.Skipped)},
		{"Owners changed", strconv.Itoa(r.UIDChanged)},
		{"Groups changed", strconv.Itoa(r.GIDChanged)},
		{"Groups withheld", strconv.Itoa(r.GIDWithheld)},
		{"Files chowned", strconv.Itoa(r.Chowned)},
		{"Missing", strconv.Itoa(r.Missing)},
	}
}

func runImport(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	cfg := app.cfg

	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	order, err := cfg.ByteOrder()
	if err != nil {
		return err
	}

	list, err := filelist.LoadManifest(importFlags.manifest)
	if err != nil {
		return err
	}

	if err := decodeCatalog(cmd, session, importFlags.catalog, order); err != nil {
		return err
	}

	applied, err := session.ApplyToBatch(ctx, list)
	if err != nil {
		return err
	}

	res := importResult{
		Session:     session.ID(),
		Superuser:   session.Superuser(),
		Files:       applied.Files,
		Skipped:     applied.Skipped,
		UIDChanged:  applied.UIDChanged,
		GIDChanged:  applied.GIDChanged,
		GIDWithheld: applied.GIDWithheld,
	}

	if importFlags.dest != "" {
		opts := session.Options()
		chowned, err := filelist.Chown(ctx, importFlags.dest, list, filelist.ChownOptions{
			SetUID:        session.Superuser() && opts.PreserveUID,
			SetGID:        opts.PreserveGID,
			IgnoreMissing: importFlags.ignoreMissing,
		})
		if err != nil {
			return err
		}
		res.Chowned = chowned.Changed
		res.Missing = chowned.Missing
	}

	if importFlags.writeManifest != "" {
		if err := filelist.SaveManifest(list, importFlags.writeManifest); err != nil {
			return err
		}
	}

	logger.Info("Catalog applied",
		logger.KeySessionID, res.Session,
		logger.KeyCount, res.Files,
		"gid_withheld", res.GIDWithheld)

	if printer.Format() == output.FormatTable {
		if res.GIDWithheld > 0 {
			printer.Warning(fmt.Sprintf("%d file(s) keep their default group: the process is not a member of the mapped group", res.GIDWithheld))
		}
		return output.SimpleTable(cmd.OutOrStdout(), pairs(res))
	}
	return printer.Print(res)
}

// decodeCatalog reads the catalog file at path into session.
func decodeCatalog(cmd *cobra.Command, session *idmap.Session, path string, order binary.ByteOrder) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer closeFile(f, &err)

	return session.DecodeAndResolveCatalogs(cmd.Context(), wire.NewReader(f, order))
}
