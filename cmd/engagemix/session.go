package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/engagemix/internal/config"
	"github.com/gauthierbraillon/engagemix/internal/display"
	"github.com/gauthierbraillon/engagemix/internal/engagement"
	"github.com/gauthierbraillon/engagemix/internal/ingest"
	"github.com/gauthierbraillon/engagemix/internal/logging"
	"github.com/gauthierbraillon/engagemix/internal/report"
	"github.com/gauthierbraillon/engagemix/internal/source"
)

// maxListedErrors bounds the rejected rows echoed to stderr by report commands.
const maxListedErrors = 10

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	input      string
	logLevel   string
	logFormat  string
}

// session is one ingested interaction log, ready for reporting.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *engagement.Catalog
	result   *ingest.Result
	reporter *report.Reporter
}

// loadConfig merges the config file, .env, environment and flags.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, errs := config.Load(g.configFile, g.envFile)
	if cfg == nil {
		return nil, errors.Join(errs...)
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = g.input
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}

	// Parse errors from Load stand; validation reruns on the flag-adjusted values.
	var problems []error
	for _, err := range errs {
		if errors.Is(err, config.ErrInvalidInteger) {
			problems = append(problems, err)
		}
	}
	problems = append(problems, cfg.Validate()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return cfg, nil
}

// ingest loads the configuration and reads the whole interaction log.
// Rejected rows are logged and summarized on stderr; they never fail the
// command.
func (g *globalFlags) ingest(cmd *cobra.Command) (*session, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	opener := source.NewOpener(source.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds) * time.Second))
	reader, closer, err := opener.OpenCSV(cmd.Context(), cfg.Input)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	registry := prometheus.NewRegistry()
	metrics := ingest.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	catalog := engagement.NewCatalog()
	pipeline := ingest.NewPipeline(catalog,
		ingest.WithLogger(logger.With("component", "ingest", "input", cfg.Input)),
		ingest.WithMetrics(metrics),
	)
	result, err := pipeline.Run(reader)
	if err != nil {
		return nil, err
	}

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, registry); err != nil {
			logger.Warn("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog,
		result:   result,
		reporter: report.New(catalog),
	}, nil
}

// ingestForReport is ingest plus a stderr summary of rejected rows.
func (g *globalFlags) ingestForReport(cmd *cobra.Command) (*session, error) {
	s, err := g.ingest(cmd)
	if err != nil {
		return nil, err
	}
	if s.result.RejectedCount() > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), display.NewTerminalFormatter().FormatIngest(s.result, maxListedErrors))
	}
	return s, nil
}

// ingestion describes the run for snapshots.
func (s *session) ingestion() report.Ingestion {
	return report.Ingestion{
		RunID:    s.result.RunID,
		Source:   sourceName(s.cfg.Input),
		Rows:     s.result.Rows,
		Accepted: s.result.Accepted,
		Rejected: s.result.RejectedCount(),
	}
}

// sourceName keeps URLs whole and reduces file paths to their base name.
func sourceName(input string) string {
	if source.IsURL(input) {
		return input
	}
	return filepath.Base(input)
}
