package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/miradorstack/check-bond/internal/config"
	"github.com/miradorstack/check-bond/internal/engine"
	"github.com/miradorstack/check-bond/internal/extractors"
	"github.com/miradorstack/check-bond/internal/metrics"
	"github.com/miradorstack/check-bond/internal/models"
	"github.com/miradorstack/check-bond/internal/repo"
	"github.com/miradorstack/check-bond/internal/report"
	"github.com/miradorstack/check-bond/internal/utils"
)

// execute runs the check with args and returns the plugin exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	exitCode := models.SeverityOK.ExitCode()

	cmd := &cobra.Command{
		Use:   "check_bond",
		Short: "Check bonded interface health from InfluxDB telemetry",
		Long: `check_bond reads the last minute of Telegraf bond_slave samples for a host from
InfluxDB and reports whether every bond still has both slave interfaces up.

Exit codes follow the monitoring plugin convention:
  0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN

Optional settings (auth, lookback window, logging, metrics textfile) are read
from the YAML file named by CHECK_BOND_CONFIG and CHECK_BOND_* variables.

Example:
  check_bond --influxhost 10.0.0.5 --influxport 8086 --influxdbname telegraf --hostname web01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lookup := func(name string) (string, bool) {
				f := cmd.Flags().Lookup(name)
				if f == nil || !f.Changed {
					return "", false
				}
				return f.Value.String(), true
			}
			exitCode = run(cmd.Context(), lookup, stdout, stderr)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String(config.FlagInfluxHost, "", "InfluxDB hostname/IP address")
	flags.Int(config.FlagInfluxPort, 0, "InfluxDB port number")
	flags.String(config.FlagInfluxDBName, "", "InfluxDB db name")
	flags.String(config.FlagHostname, "", "Hostname used to query InfluxDB")

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdout, err)
		return models.SeverityWarning.ExitCode()
	}
	return exitCode
}

func run(ctx context.Context, lookup config.Lookup, stdout, stderr io.Writer) int {
	target, err := config.Resolve(lookup)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return models.SeverityWarning.ExitCode()
	}

	cfg, err := config.Load("")
	if err != nil {
		if errors.Is(err, utils.ErrConfig) {
			fmt.Fprintln(stdout, err)
			return models.SeverityWarning.ExitCode()
		}
		rep := report.Unknown(err)
		_ = report.Write(stdout, rep)
		return rep.ExitCode()
	}

	logger := utils.NewLoggerTo(stderr, cfg.Logging.Level, cfg.Logging.JSON)
	logger.Debug("checking bonds",
		slog.String("hostname", target.Hostname),
		slog.String("influxhost", target.InfluxHost),
		slog.Int("influxport", target.InfluxPort),
		slog.String("database", target.InfluxDBName),
	)

	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		logger.Warn("failed to register metrics", slog.Any("error", err))
	}

	client := repo.NewInfluxClient(target.InfluxHost, target.InfluxPort, target.InfluxDBName, repo.InfluxOptions{
		Scheme:   cfg.Influx.Scheme,
		Username: cfg.Influx.Username,
		Password: cfg.Influx.Password,
		Window:   cfg.Query.Window,
	})
	evaluator := engine.NewEvaluator(logger, client, extractors.NewBondExtractor(), cfg.Evaluator.Concurrency)

	var rep report.Report
	eval, err := evaluator.Evaluate(ctx, target.Hostname)
	if err != nil {
		logger.Error("bond evaluation failed", slog.String("kind", string(utils.KindOf(err))), slog.Any("error", err))
		rep = report.Unknown(err)
	} else {
		for _, bond := range eval.Bonds {
			metrics.SetBondSeverity(bond.Bond, int(bond.Classification.Severity()))
		}
		rep = report.Build(eval)
	}
	metrics.SetRunStatus(rep.ExitCode())

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			logger.Warn("failed to write metrics textfile", slog.String("path", cfg.Metrics.Textfile), slog.Any("error", err))
		}
	}

	if err := report.Write(stdout, rep); err != nil {
		logger.Error("failed to write report", slog.Any("error", err))
	}
	return rep.ExitCode()
}
