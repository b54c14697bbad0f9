// Package main provides the engagemix CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/engagemix/internal/display"
	"github.com/gauthierbraillon/engagemix/internal/engagement"
	"github.com/gauthierbraillon/engagemix/internal/report"
	"github.com/gauthierbraillon/engagemix/pkg/export"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for engagemix CLI.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "engagemix",
		Short: "Analyze engagement across streaming and publishing platforms",
		Long: "Engagemix ingests an interaction log (CSV, from a file or URL) and reports\n" +
			"engagement per content, user and platform.",
		Version:      buildVersion(),
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("engagemix version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file with ENGAGEMIX_* variables (ignored if missing)")
	pf.StringVarP(&g.input, "input", "i", "", "interaction log: CSV file path or http(s) URL")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(newPlatformsCmd(g))
	rootCmd.AddCommand(newContentsCmd(g))
	rootCmd.AddCommand(newPodcastsCmd(g))
	rootCmd.AddCommand(newUsersCmd(g))
	rootCmd.AddCommand(newUserCmd(g))
	rootCmd.AddCommand(newMetricsCmd(g))
	rootCmd.AddCommand(newTopCmd(g))
	rootCmd.AddCommand(newActivityCmd(g))
	rootCmd.AddCommand(newExportCmd(g))
	rootCmd.AddCommand(newCompareCmd(g))
	rootCmd.AddCommand(newValidateCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))

	return rootCmd
}

// newPlatformsCmd creates the platforms subcommand.
func newPlatformsCmd(g *globalFlags) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List platforms",
		Long:  "List the platforms found in the interaction log, in order of first appearance.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			formatter := display.NewTerminalFormatter()
			if summary {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlatformSummaries(s.reporter.PlatformSummaries()))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlatforms(s.reporter.Platforms()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "Show interactions, users and watch time per platform")

	return cmd
}

// newContentsCmd creates the contents subcommand.
func newContentsCmd(g *globalFlags) *cobra.Command {
	var kinds []string
	var limit int

	cmd := &cobra.Command{
		Use:   "contents",
		Short: "List contents",
		Long:  "List contents in order of first appearance, optionally filtered by type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := report.ContentOptions{Limit: limit}
			for _, raw := range kinds {
				k, err := engagement.ParseKind(raw)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, k)
			}

			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			output := display.NewTerminalFormatter().FormatContents(s.reporter.Contents(opts))
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "type", "t", nil, "Filter by type (video, podcast, article)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of contents to display (0 for all)")

	return cmd
}

// newPodcastsCmd creates the podcasts subcommand.
func newPodcastsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "podcasts",
		Short: "List podcasts with interaction counts by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			podcasts := s.reporter.Contents(report.ContentOptions{Kinds: []engagement.Kind{engagement.KindPodcast}})
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatPodcasts(podcasts))
			return nil
		},
	}
}

// newUsersCmd creates the users subcommand.
func newUsersCmd(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Long:  "List users in order of first appearance with their interaction counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			users := s.reporter.Users()
			if limit > 0 && len(users) > limit {
				users = users[:limit]
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatUsers(users))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of users to display (0 for all)")

	return cmd
}

// newUserCmd creates the user subcommand.
func newUserCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show the activity report of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := engagement.ParseUserID(args[0])
			if err != nil {
				return err
			}

			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			summary, err := s.reporter.UserSummary(id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatUser(summary))
			return nil
		},
	}
}

// contentReports maps metrics report names to their formatter.
var contentReports = map[string]func(*display.TerminalFormatter, []*engagement.Content) string{
	"engagement":  (*display.TerminalFormatter).FormatEngagementTotals,
	"types":       (*display.TerminalFormatter).FormatTypeCounts,
	"consumption": (*display.TerminalFormatter).FormatConsumption,
	"average":     (*display.TerminalFormatter).FormatAverageConsumption,
	"comments":    (*display.TerminalFormatter).FormatComments,
}

func contentReportNames() []string {
	names := make([]string, 0, len(contentReports))
	for name := range contentReports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newMetricsCmd creates the metrics subcommand.
func newMetricsCmd(g *globalFlags) *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "metrics <report>",
		Short: "Show a per-content metrics report",
		Long: "Show a per-content metrics report. Reports:\n" +
			"  engagement   likes, shares and comments per content\n" +
			"  types        interaction counts by type per content\n" +
			"  consumption  total watch time per content\n" +
			"  average      average watch time per content\n" +
			"  comments     comment texts per content",
		Args:      cobra.ExactArgs(1),
		ValidArgs: contentReportNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(args[0])
			format, ok := contentReports[name]
			if !ok {
				return fmt.Errorf("unknown report %q: must be one of %s", args[0], strings.Join(contentReportNames(), ", "))
			}

			opts := report.ContentOptions{}
			for _, raw := range kinds {
				k, err := engagement.ParseKind(raw)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, k)
			}

			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), format(display.NewTerminalFormatter(), s.reporter.Contents(opts)))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "type", "t", nil, "Filter by type (video, podcast, article)")

	return cmd
}

// newTopCmd creates the top subcommand.
func newTopCmd(g *globalFlags) *cobra.Command {
	var metric string
	var limit int
	var users bool

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank contents or users by a metric",
		Long: "Rank contents (or users with --users) by a named metric, highest first.\n" +
			"Content metrics: " + strings.Join(report.ContentMetricNames(), ", ") + "\n" +
			"User metrics: " + strings.Join(report.UserMetricNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			n := limit
			if !cmd.Flags().Changed("limit") {
				n = s.cfg.TopN
			}

			formatter := display.NewTerminalFormatter()
			if users {
				ranked, err := s.reporter.TopUsers(metric, n)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTopUsers(metric, ranked))
				return nil
			}

			ranked, err := s.reporter.TopContents(metric, n)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTopContents(metric, ranked))
			return nil
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", report.MetricTotalInteractions, "Metric to rank by")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Number of entries to show (default from config top_n)")
	cmd.Flags().BoolVarP(&users, "users", "u", false, "Rank users instead of contents")

	return cmd
}

// newActivityCmd creates the activity subcommand.
func newActivityCmd(g *globalFlags) *cobra.Command {
	var since, until string
	var platforms, types []string
	var userID, limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent interactions, newest first",
		Long:  "Show interactions from every platform merged into one feed, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := report.ActivityOptions{Limit: limit, Platforms: platforms}
			if cmd.Flags().Changed("user") {
				if userID < 0 {
					return fmt.Errorf("%w: %d", engagement.ErrInvalidUserID, userID)
				}
				opts.UserID = &userID
			}
			for _, raw := range types {
				t, err := engagement.ParseInteractionType(raw)
				if err != nil {
					return err
				}
				opts.Types = append(opts.Types, t)
			}
			var err error
			if since != "" {
				if opts.Since, err = engagement.ParseTimestamp(since); err != nil {
					return fmt.Errorf("--since: %w", err)
				}
			}
			if until != "" {
				if opts.Until, err = engagement.ParseTimestamp(until); err != nil {
					return fmt.Errorf("--until: %w", err)
				}
			}

			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatActivity(s.reporter.Activity(opts)))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only interactions at or after this time")
	cmd.Flags().StringVar(&until, "until", "", "Only interactions before this time")
	cmd.Flags().StringSliceVarP(&platforms, "platform", "p", nil, "Filter by platform name")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Filter by interaction type (view_start, like, share, comment)")
	cmd.Flags().IntVar(&userID, "user", 0, "Only interactions of this user id")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of interactions to display (0 for all)")

	return cmd
}

// newExportCmd creates the export subcommand.
func newExportCmd(g *globalFlags) *cobra.Command {
	var formatFlag string
	var dir string
	var name string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full report snapshot as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("format") {
				formatFlag = s.cfg.ExportFormat
			}
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				dir = s.cfg.ExportDir
			}
			if name == "" {
				name = "engagemix-" + time.Now().UTC().Format("20060102T150405Z")
			}

			snapshot := s.reporter.Snapshot(s.ingestion(), time.Now())
			path, err := export.NewStore(dir).Save(name, format, snapshot)
			if err != nil {
				return fmt.Errorf("failed to export snapshot: %w", err)
			}

			s.logger.Info("snapshot exported", "path", path, "run_id", s.result.RunID)
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Export format: json or yaml (default from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Export directory (default from config)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Snapshot file name without extension (default timestamped)")

	return cmd
}

// newCompareCmd creates the compare subcommand.
func newCompareCmd(g *globalFlags) *cobra.Command {
	var formatFlag string
	var dir string

	cmd := &cobra.Command{
		Use:   "compare <snapshot>",
		Short: "Compare the current log with a previously exported snapshot",
		Long:  "Compare interaction counts per platform and content with a snapshot written by export.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingestForReport(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("format") {
				formatFlag = s.cfg.ExportFormat
			}
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				dir = s.cfg.ExportDir
			}

			store := export.NewStore(dir)
			var baseline report.Snapshot
			if err := store.Load(args[0], format, &baseline); err != nil {
				if errors.Is(err, export.ErrNotFound) {
					return fmt.Errorf("no %s snapshot named %q in %s", format, args[0], store.Dir())
				}
				return err
			}

			current := s.reporter.Snapshot(s.ingestion(), time.Now())
			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatComparison(report.Compare(baseline, current)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Snapshot format: json or yaml (default from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Snapshot directory (default from config)")

	return cmd
}

// newValidateCmd creates the validate subcommand.
func newValidateCmd(g *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Ingest the log and list every rejected row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.ingest(cmd)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), display.NewTerminalFormatter().FormatIngest(s.result, 0))
			if strict && s.result.RejectedCount() > 0 {
				return fmt.Errorf("%d rows rejected", s.result.RejectedCount())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error if any row is rejected")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Show the configuration after merging the config file, .env, ENGAGEMIX_* variables and flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			summary := cfg.Summary()
			keys := make([]string, 0, len(summary))
			for k := range summary {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			if g.configFile != "" {
				fmt.Fprintf(out, "Config file: %s\n", g.configFile)
			}
			for _, k := range keys {
				fmt.Fprintf(out, "%s: %s\n", k, summary[k])
			}
			return nil
		},
	}
}
