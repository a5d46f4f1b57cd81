package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sunbench/internal/benchmark"
	"sunbench/internal/config"
	"sunbench/internal/docker"
	"sunbench/internal/engine"
	"sunbench/internal/telemetry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newResolver builds the workload resolver for the configured runtime. The
// returned cleanup must be called once the run is over. Tests replace it.
var newResolver = func(ctx context.Context, s config.Settings) (benchmark.Resolver, func(), error) {
	switch s.Runtime {
	case config.RuntimeDocker:
		client, err := docker.NewClient()
		if err != nil {
			return nil, nil, err
		}
		c, err := engine.NewContainer(client, s.DockerImage, s.Engine, s.SuiteDir, s.Extension, s.Timeout)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		if err := c.Start(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := c.Close(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("Failed to remove benchmark container", "error", err)
			}
			client.Close()
		}
		return c, cleanup, nil
	default:
		l, err := engine.NewLocal(s.Engine, s.SuiteDir, s.Extension, s.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tests...]",
		Short: "Run the benchmark suite and print the report",
		Long: `Runs every test (or only the ones named as <category>-<name> arguments)
repeat+1 times in category order. The first pass is a warm-up and is left out
of the statistics. Any failing test aborts the run without a report.

Without arguments the tests come from the "tests" config key (SUNBENCH_TESTS
takes a comma or space separated list) or default to the full suite.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ValidateConfig()
		},
		RunE: runBenchmarks,
	}

	flags := cmd.Flags()
	flags.IntP("repeat", "r", benchmark.DefaultRepeatCount, "Number of measured passes (one warm-up pass is added)")
	flags.String("suite-dir", ".", "Directory containing the <category>-<name> scripts")
	flags.String("engine", "js", "JavaScript shell command line used to run each script")
	flags.String("extension", ".js", "Script file extension")
	flags.String("runtime", config.RuntimeLocal, "Where scripts run: local or docker")
	flags.String("image", "node:22-alpine", "Container image for the docker runtime")
	flags.Duration("timeout", 0, "Per-test time limit (0 disables)")
	flags.Duration("resolution", time.Millisecond, "Timer resolution measurements are truncated to")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.String("push-url", "", "Push metrics to this Pushgateway when the run completes")

	viper.BindPFlag("repeat_count", flags.Lookup("repeat"))
	viper.BindPFlag("suite_dir", flags.Lookup("suite-dir"))
	viper.BindPFlag("engine", flags.Lookup("engine"))
	viper.BindPFlag("extension", flags.Lookup("extension"))
	viper.BindPFlag("runtime", flags.Lookup("runtime"))
	viper.BindPFlag("docker.image", flags.Lookup("image"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("resolution", flags.Lookup("resolution"))
	viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
	viper.BindPFlag("push_url", flags.Lookup("push-url"))

	return cmd
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := config.Current()

	list := s.TestList()
	if len(args) > 0 {
		list = args
	}
	ids, err := benchmark.ParseIDs(list)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)
	logger.Debug("Host", "host", telemetry.DescribeHost())
	logger.Info("Starting benchmark run",
		"tests", len(ids), "repeat_count", s.RepeatCount, "runtime", s.Runtime, "engine", s.Engine)

	resolver, cleanup, err := newResolver(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to prepare engine: %w", err)
	}
	defer cleanup()

	metrics := telemetry.NewMetrics()
	if s.MetricsAddr != "" {
		serveCtx, stopServing := context.WithCancel(ctx)
		defer stopServing()
		go func() {
			if err := metrics.Serve(serveCtx, s.MetricsAddr); err != nil {
				logger.Warn("Metrics server failed", "error", err)
			}
		}()
	}

	runner := benchmark.NewRunner(resolver, cmd.OutOrStdout())
	runner.Extension = s.Extension
	runner.Resolution = s.Resolution
	runner.Observer = metrics
	runner.Logger = logger

	results := benchmark.Build(ids)
	if err := runner.Run(ctx, results, s.RepeatCount); err != nil {
		return err
	}

	benchmark.PrintReport(cmd.OutOrStdout(), results, s.RepeatCount)

	if s.PushURL != "" {
		if err := metrics.Push(ctx, s.PushURL, runID); err != nil {
			logger.Warn("Metrics push failed", "error", err)
		}
	}
	return nil
}
