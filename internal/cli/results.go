package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"motifscan/internal/config"
	"motifscan/internal/motif"
	"motifscan/internal/results"
)

var (
	resultsLimit  int
	resultsJSON   bool
	resultsExport string
)

// resultsCmd streams stored hits without loading them all into memory.
var resultsCmd = &cobra.Command{
	Use:   "results <sequence-id>",
	Short: "List the motifs found for a scanned sequence",
	Long: `List the motifs found for a scanned sequence, oldest first.

By default hits print as tab-separated columns. --json emits the raw
JSONL records instead, and --export writes them to a file; a .zst
suffix compresses the export with zstandard.`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	f := resultsCmd.Flags()
	f.IntVarP(&resultsLimit, "limit", "l", 0, "stop after this many hits (0 = all)")
	f.BoolVar(&resultsJSON, "json", false, "print raw JSONL records")
	f.StringVarP(&resultsExport, "export", "o", "", "write hits to this file instead of stdout (.zst compresses)")
}

func runResults(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	store, err := results.Open(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	if resultsExport != "" {
		n, err := store.ExportFile(resultsExport)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", resultsExport, humanize.Bytes(uint64(n)))
		return nil
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	err = store.Iter(resultsLimit, func(m motif.Motif) error {
		if resultsJSON {
			return enc.Encode(m)
		}
		_, err := fmt.Fprintf(out, "%s\t%s\t%d\t%d\t%d\t%.1f\t%s\n",
			m.Class, m.Subclass, m.Start, m.End, m.Length, m.Score, m.Strand)
		return err
	})
	if isBrokenPipe(err) {
		// downstream consumers like `head` close early
		return nil
	}
	return err
}

func isBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
