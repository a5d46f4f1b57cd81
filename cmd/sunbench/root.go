package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sunbench/internal/config"
	"sunbench/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit

// newRootCmd builds the command tree. Flags are bound to viper keys at
// construction, so it must be rebuilt after a viper.Reset.
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sunbench",
		Short: "Run the SunSpider JavaScript benchmark suite",
		Long: `sunbench runs every SunSpider test script a fixed number of times with an
external JavaScript engine, after one discarded warm-up pass, and reports the
mean time and 95% confidence interval of every test, category and the whole
suite.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(cfgFile); err != nil {
				return err
			}
			s := config.Current()
			telemetry.InitLogger(s.Verbose, s.LogFile)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sunbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also append logs to this file")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(newRunCmd(), newListCmd(), NewVersionCmd())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		exit(1)
	}
}
