package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aweist/league-calendar/calendar"
	"github.com/aweist/league-calendar/config"
	"github.com/aweist/league-calendar/models"
	"github.com/aweist/league-calendar/pipeline"
	"github.com/aweist/league-calendar/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "league-calendar",
		Short: "Publish league match and event schedules as iCalendar files",
		Long: `Fetches league schedules from a spreadsheet export or the league API
and writes subscribable .ics calendars. Each invocation is a single run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "settings.json", "Path to the JSON settings file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newMatchesCmd(opts),
		newEventsCmd(opts),
		newTeamsCmd(opts),
		newMergeCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

func newMatchesCmd(opts *options) *cobra.Command {
	var out, artifact string

	cmd := &cobra.Command{
		Use:   "matches [query]",
		Short: "Build the match calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			return withRunner(cmd.Context(), opts, []string{out}, func(r *pipeline.Runner, cfg *config.Config) error {
				if artifact != "" {
					cfg.Output.Artifact = artifact
				}
				result, err := r.Matches(cmd.Context(), query, out)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output calendar path or gs://bucket/object (default from settings)")
	cmd.Flags().StringVar(&artifact, "artifact", "", "Where to keep the downloaded spreadsheet (default from settings)")

	return cmd
}

func newEventsCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "events [query]",
		Short: "Build the event calendar from the league API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			return withRunner(cmd.Context(), opts, []string{out}, func(r *pipeline.Runner, cfg *config.Config) error {
				result, err := r.Events(cmd.Context(), query, out)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output calendar path or gs://bucket/object (default from settings)")

	return cmd
}

func newTeamsCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Print the team roster index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := OutputFormat(strings.ToLower(format))
			if f != FormatText && f != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			return withRunner(cmd.Context(), opts, nil, func(r *pipeline.Runner, cfg *config.Config) error {
				index, err := r.Teams(cmd.Context())
				if err != nil {
					return err
				}
				return WriteTeams(cmd.OutOrStdout(), index.All(), f)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

func newMergeCmd(opts *options) *cobra.Command {
	var out, name, description string

	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge existing calendars into one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := append([]string{out}, args...)
			return withRunner(cmd.Context(), opts, paths, func(r *pipeline.Runner, cfg *config.Config) error {
				meta := calendar.Metadata{Name: name, Description: description}
				result, err := r.Merge(cmd.Context(), args, out, meta)
				if err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output calendar path or gs://bucket/object (default from settings)")
	cmd.Flags().StringVar(&name, "name", "", "Name of the merged calendar")
	cmd.Flags().StringVar(&description, "description", "", "Description of the merged calendar")

	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	var fetches bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs or downloads from the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			cfg, err := loadSettings(opts)
			if err != nil {
				return err
			}
			if cfg.ArchivePath == "" {
				return fmt.Errorf("%w: archive_path is required", models.ErrSourceUnavailable)
			}

			archive, err := storage.NewBoltArchive(cfg.ArchivePath)
			if err != nil {
				return err
			}
			defer archive.Close()

			if fetches {
				recs, err := archive.GetAllFetches()
				if err != nil {
					return fmt.Errorf("reading fetch history: %w", err)
				}
				return WriteFetches(cmd.OutOrStdout(), recs, limit)
			}

			runs, err := archive.GetRecentRuns(limit)
			if err != nil {
				return fmt.Errorf("reading run history: %w", err)
			}
			return WriteRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&fetches, "fetches", false, "List archived downloads instead of runs")

	return cmd
}

func loadSettings(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withRunner loads settings, opens the archive and any object store the
// given paths need, and hands a ready Runner to fn.
func withRunner(ctx context.Context, opts *options, paths []string, fn func(*pipeline.Runner, *config.Config) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadSettings(opts)
	if err != nil {
		return err
	}
	logger := newLogger(opts.verbose)

	rc := pipeline.RunnerConfig{
		Settings: cfg,
		Logger:   logger,
	}

	if cfg.ArchivePath != "" {
		archive, err := storage.NewBoltArchive(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		rc.Archive = archive
	}

	sink := &storage.Router{}
	remote := append([]string{cfg.Output.Matches, cfg.Output.Events, cfg.Output.Merged}, paths...)
	if storage.AnyRemote(remote...) {
		store, err := storage.NewGCS(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
		}
		defer store.Close()
		sink.Remote = store
	}
	rc.Sink = sink

	logger.Debug("loaded settings", "config", opts.configPath, "match_source", cfg.MatchSource)
	return fn(pipeline.NewRunner(rc), cfg)
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, models.ErrSerialization) {
			fmt.Fprintln(os.Stderr, "The output file may be incomplete.")
		}
		os.Exit(ExitError)
	}
}
