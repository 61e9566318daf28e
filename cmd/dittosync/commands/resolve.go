package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittosync/pkg/idmap"
)

var resolveFlags struct {
	catalog string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show how a peer's catalog maps onto local ids",
	Long: `Decode a catalog and print, for every entry, the peer id, its name, and
the local id it resolves to. Nothing is changed on disk.

A resolved group of 4294967295 means the group is withheld because the
process is not a member of it.

Examples:
  dittosync resolve --catalog data.cat
  dittosync resolve --catalog data.cat -o yaml`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFlags.catalog, "catalog", "", "Catalog file (required)")
	_ = resolveCmd.MarkFlagRequired("catalog")
}

// mappingRow is one resolved catalog entry.
type mappingRow struct {
	Kind     string `json:"kind" yaml:"kind"`
	PeerID   uint32 `json:"peer_id" yaml:"peer_id"`
	Name     string `json:"name" yaml:"name"`
	LocalID  uint32 `json:"local_id" yaml:"local_id"`
	Withheld bool   `json:"withheld,omitempty" yaml:"withheld,omitempty"`
}

// mappingList renders as a table.
type mappingList []mappingRow

func (l mappingList) Headers() []string {
	return []string{"Kind", "Peer ID", "Name", "Local ID"}
}

func (l mappingList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, m := range l {
		local := strconv.FormatUint(uint64(m.LocalID), 10)
		if m.Withheld {
			local = "(withheld)"
		}
		rows = append(rows, []string{m.Kind, strconv.FormatUint(uint64(m.PeerID), 10), m.Name, local})
	}
	return rows
}

func runResolve(cmd *cobra.Command, _ []string) error {
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

	if err := decodeCatalog(cmd, session, resolveFlags.catalog, order); err != nil {
		return err
	}

	var out mappingList
	for _, kind := range idmap.Kinds {
		for _, r := range session.Incoming(kind).Records() {
			out = append(out, mappingRow{
				Kind:     kind.String(),
				PeerID:   r.SourceID,
				Name:     r.Name,
				LocalID:  r.ResolvedID,
				Withheld: kind == idmap.KindGroup && r.ResolvedID == idmap.NoGroup,
			})
		}
	}
	return printer.Print(out)
}
