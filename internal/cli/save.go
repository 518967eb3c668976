package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"motifscan/internal/config"
	"motifscan/internal/seqstore"
)

var saveName string

// saveCmd stores a sequence file so later scans can read it in ranges.
var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Store a FASTA or plain sequence file for scanning",
	Long: `Store a sequence file under the data directory. FASTA input is split
into one stored sequence per record; plain text is stored as a single
sequence. Whitespace is stripped and bases are uppercased on the way in.

Each stored sequence is assigned an ID, printed on save. Scans and
result queries refer to sequences by that ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringVarP(&saveName, "name", "n", "", "name to store the sequence under (defaults to the file name)")
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	store, err := seqstore.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	name := saveName
	if name == "" {
		if args[0] == "-" {
			name = "stdin"
		} else {
			base := filepath.Base(args[0])
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	metas, err := store.SaveFile(args[0], name)
	if err != nil {
		return err
	}
	for _, m := range metas {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s bp\tGC %.1f%%\n",
			m.ID, m.Name, humanize.Comma(int64(m.Length)), m.GCContent*100)
	}
	return nil
}
