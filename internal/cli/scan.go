package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"motifscan/internal/config"
	"motifscan/internal/detect"
	"motifscan/internal/executor"
	"motifscan/internal/perf"
	"motifscan/internal/progress"
	"motifscan/internal/results"
	"motifscan/internal/seed"
	"motifscan/internal/seqstore"
	"motifscan/internal/strategy"
)

var scanProgress bool

// scanCmd runs the full pipeline against one stored sequence.
var scanCmd = &cobra.Command{
	Use:   "scan <sequence-id>",
	Short: "Scan a stored sequence for structural motifs",
	Long: `Scan a stored sequence for structural motifs.

The sequence length picks the chunking strategy: short sequences are
scanned whole, longer ones are decomposed into overlapping chunks at
one or more size tiers and scanned by a worker pool. Hits landing in
chunk overlaps are deduplicated before they reach the result store.

Results are written next to the sequence as a JSONL hit file plus a
summary report with per-detector timings.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	f := scanCmd.Flags()
	f.IntP("workers", "w", 0, "worker count for the chunk pool (0 = auto)")
	f.Bool("sequential", false, "scan chunks one at a time instead of in parallel")
	f.Duration("timeout", 0, "deadline for the parallel pool before falling back to sequential")
	f.StringSlice("classes", nil, "motif classes to scan for (default all)")
	f.String("seeds", "", "TOML file overriding the built-in seed table")
	f.BoolVar(&scanProgress, "progress", false, "show a progress bar on stderr")

	cobra.CheckErr(viper.BindPFlag("scan.workers", f.Lookup("workers")))
	cobra.CheckErr(viper.BindPFlag("scan.sequential", f.Lookup("sequential")))
	cobra.CheckErr(viper.BindPFlag("scan.timeout", f.Lookup("timeout")))
	cobra.CheckErr(viper.BindPFlag("scan.classes", f.Lookup("classes")))
	cobra.CheckErr(viper.BindPFlag("scan.seed-file", f.Lookup("seeds")))
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	store, err := seqstore.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	meta, err := store.Metadata(args[0])
	if err != nil {
		return err
	}

	seeds := seed.Default()
	if cfg.Scan.SeedFile != "" {
		if seeds, err = seed.LoadTOML(cfg.Scan.SeedFile); err != nil {
			return err
		}
	}
	table, err := seed.NewTable(seeds)
	if err != nil {
		return err
	}
	reg, err := detect.Default().Filter(cfg.Scan.Classes)
	if err != nil {
		return err
	}

	tiers, th := cfg.Tiers(), cfg.Thresholds()
	if err := strategy.Validate(th, tiers); err != nil {
		return err
	}
	plan := strategy.Select(meta.Length, th, tiers)
	log.Debugf("sequence %s: %s bp, strategy %s",
		meta.ID, humanize.Comma(int64(meta.Length)), plan.Mode)

	hits, err := results.Open(cfg.DataDir, meta.ID)
	if err != nil {
		return err
	}
	defer hits.Close()
	if hits.Finalized() {
		return fmt.Errorf("sequence %s already has a finalized scan; remove %s.hits.jsonl and %s.summary.json under %s to rescan",
			meta.ID, meta.ID, meta.ID, cfg.DataDir)
	}

	mon := perf.New()
	exec := executor.New(store, table, reg, mon, log, executor.Config{
		Workers:    cfg.Scan.Workers,
		Sequential: cfg.Scan.Sequential,
		Timeout:    cfg.Scan.Timeout,
	})

	var onProgress progress.Func
	wait := func() {}
	if scanProgress {
		onProgress, wait = progress.Bar(executor.PlanChunks(meta.Length, plan))
	}

	start := time.Now()
	rep, err := exec.Run(cmd.Context(), meta.ID, plan, hits, onProgress)
	wait()
	if err != nil {
		return err
	}

	snap := mon.Snapshot()
	if err := hits.AttachPerformance(snap); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scanned %s (%s bp) in %s\n",
		meta.Name, humanize.Comma(int64(meta.Length)), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "strategy %s, %d chunks, %d motifs (%d boundary duplicates dropped)\n",
		plan.Mode, rep.Chunks, rep.Motifs, rep.Deduped)
	fmt.Fprintf(out, "throughput %s bp/s, peak memory %.1f MB\n",
		humanize.Comma(int64(snap.ThroughputBPS)), snap.PeakMemoryMB)
	if rep.Issues > 0 {
		fmt.Fprintf(out, "recovered issues: %d\n", rep.Issues)
	}
	if rep.Degraded {
		fmt.Fprintln(out, "note: parallel pool degraded, run completed sequentially")
	}
	return nil
}
