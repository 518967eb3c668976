// Package cli is for command line interactions with the motifscan
// application. Settings flow through Viper so flags, environment and the
// optional motifscan.yaml all feed the same config struct.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"motifscan/internal/config"
	"motifscan/internal/xlog"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "motifscan",
	Short: "Scan DNA sequences for non-B structural motifs",
	Long: `Store large DNA sequences once, then scan them for structural motifs
such as G-quadruplexes, Z-DNA tracts, A-tracts and curved DNA.

Sequences are decomposed into overlapping chunks sized to the sequence
length, scanned in parallel, and the deduplicated hits are persisted
next to the sequence for later querying.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(cfgFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to a motifscan.yaml settings file")
	pf.String("data-dir", "", "directory for stored sequences and results (default ~/.motifscan)")
	pf.BoolP("verbose", "v", false, "verbose logging")

	cobra.CheckErr(viper.BindPFlag("data-dir", pf.Lookup("data-dir")))
	cobra.CheckErr(viper.BindPFlag("verbose", pf.Lookup("verbose")))
}

// Execute adds all child commands to the root command and runs it.
// Called by main.main(); the return value becomes the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "motifscan: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the app logger from the resolved settings.
func newLogger(cfg config.Config) *xlog.Logger {
	return xlog.New(os.Stderr, cfg.Verbose)
}
