package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"motifscan/internal/config"
	"motifscan/internal/results"
)

var summaryJSON bool

// summaryCmd prints the aggregate report for a scanned sequence. When a
// finalized report exists it includes the performance section; otherwise
// the statistics are recomputed from the hit file.
var summaryCmd = &cobra.Command{
	Use:   "summary <sequence-id>",
	Short: "Show aggregate statistics for a scanned sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the report as JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	rep, err := results.ReadFinalReport(cfg.DataDir, args[0])
	if err == nil {
		if summaryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printSummary(out, rep.Summary)
		fmt.Fprintf(out, "\nscan: %s for %s bp (%s bp/s), peak memory %.1f MB\n",
			rep.Performance.TotalElapsed.Round(time.Millisecond), humanize.Comma(int64(rep.Performance.TotalBP)),
			humanize.Comma(int64(rep.Performance.ThroughputBPS)), rep.Performance.PeakMemoryMB)
		if rep.Performance.SlowestDetector != "" {
			fmt.Fprintf(out, "slowest detector: %s\n", rep.Performance.SlowestDetector)
		}
		for _, d := range rep.Performance.Detectors {
			fmt.Fprintf(out, "  %-16s %8s  %5.1f%%\n", d.Name, d.Cumulative.Round(time.Millisecond), d.Percent)
		}
		if rep.Performance.ValidationIssues > 0 {
			fmt.Fprintf(out, "recovered issues: %d\n", rep.Performance.ValidationIssues)
		}
		return nil
	}

	// no finalized report yet, recompute from the hit file
	store, err := results.Open(cfg.DataDir, args[0])
	if err != nil {
		return err
	}
	defer store.Close()
	sum, err := store.Summary()
	if err != nil {
		return err
	}
	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	printSummary(out, sum)
	return nil
}

func printSummary(out io.Writer, sum results.Summary) {
	fmt.Fprintf(out, "motifs: %s, coverage %s bp\n",
		humanize.Comma(int64(sum.TotalCount)), humanize.Comma(int64(sum.CoverageBP)))
	if sum.TotalCount > 0 {
		fmt.Fprintf(out, "score: avg %.1f, min %.1f, max %.1f\n", sum.AvgScore, sum.ScoreMin, sum.ScoreMax)
	}

	classes := make([]string, 0, len(sum.ClassDistribution))
	for c := range sum.ClassDistribution {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		fmt.Fprintf(out, "  %-16s %d\n", c, sum.ClassDistribution[c])
	}
}
