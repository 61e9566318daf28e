package commands

import (
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

var exportFlags struct {
	catalog  string
	manifest string
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Scan a tree and write its ownership catalog and manifest",
	Long: `Scan <dir>, record the owner and group of every entry, and write:

  - the catalog: each distinct uid and gid with its local name, in the
    binary catalog format
  - the manifest: the file list with numeric ownership, as YAML

Ids without a local name, and id 0, are left out of the catalog; the
receiving side keeps them numerically.

Examples:
  dittosync export /srv/data --catalog data.cat --manifest data.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.catalog, "catalog", "", "Catalog output file (required)")
	exportCmd.Flags().StringVar(&exportFlags.manifest, "manifest", "", "Manifest output file (required)")
	_ = exportCmd.MarkFlagRequired("catalog")
	_ = exportCmd.MarkFlagRequired("manifest")
}

// exportResult is printed by export.
type exportResult struct {
	Session  string `json:"session" yaml:"session"`
	Files    int    `json:"files" yaml:"files"`
	Users    int    `json:"users" yaml:"users"`
	Groups   int    `json:"groups" yaml:"groups"`
	Bytes    int64  `json:"catalog_bytes" yaml:"catalog_bytes"`
	Catalog  string `json:"catalog" yaml:"catalog"`
	Manifest string `json:"manifest" yaml:"manifest"`
}

func (r exportResult) Headers() []string { return []string{"Field", "Value"} }

func (r exportResult) Rows() [][]string {
	return [][]string{
		{"Session", r.Session},
		{"Files", strconv.Itoa(r.Files)},
		{"Users", strconv.Itoa(r.Users)},
		{"Groups", strconv.Itoa(r.Groups)},
		{"Catalog", fmt.Sprintf("%s (%d bytes)", r.Catalog, r.Bytes)},
		{"Manifest", r.Manifest},
	}
}

func runExport(cmd *cobra.Command, args []string) (err error) {
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

	list, err := filelist.Scan(ctx, args[0])
	if err != nil {
		return err
	}
	if err := session.RecordList(ctx, list); err != nil {
		return err
	}

	f, err := os.Create(exportFlags.catalog)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	defer closeFile(f, &err)

	w := wire.NewWriter(f, order)
	if err := session.EncodeCatalogs(ctx, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	if err := filelist.SaveManifest(list, exportFlags.manifest); err != nil {
		return err
	}

	res := exportResult{
		Session:  session.ID(),
		Files:    list.Len(),
		Users:    session.Outgoing(idmap.KindUser).Len(),
		Groups:   session.Outgoing(idmap.KindGroup).Len(),
		Bytes:    w.BytesWritten(),
		Catalog:  exportFlags.catalog,
		Manifest: exportFlags.manifest,
	}
	logger.Info("Catalog exported",
		logger.KeySessionID, res.Session,
		logger.KeyCount, res.Files,
		logger.KeyBytes, res.Bytes)

	if printer.Format() == output.FormatTable {
		return output.SimpleTable(cmd.OutOrStdout(), pairs(res))
	}
	return printer.Print(res)
}

func pairs(r output.TableRenderer) [][2]string {
	rows := r.Rows()
	out := make([][2]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, [2]string{row[0], row[1]})
	}
	return out
}
