package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aweist/league-calendar/calendar"
	"github.com/aweist/league-calendar/client"
	"github.com/aweist/league-calendar/config"
	"github.com/aweist/league-calendar/models"
	"github.com/aweist/league-calendar/parser"
	"github.com/aweist/league-calendar/roster"
	"github.com/aweist/league-calendar/storage"
)

const (
	ModeMatches = "matches"
	ModeEvents  = "events"
	ModeMerge   = "merge"
)

// Archive keeps an audit trail of fetches and runs. It is never read
// back during a run.
type Archive interface {
	client.Archiver
	SaveRun(run models.RunSummary) error
	CleanupOldFetches(before time.Time) (int, error)
}

type Runner struct {
	settings *config.Config
	csv      *client.CSVClient
	sheet    *client.SheetClient
	api      *client.APIClient
	sink     calendar.Sink
	archive  Archive
	logger   *slog.Logger
	now      func() time.Time
}

type RunnerConfig struct {
	Settings   *config.Config
	Sink       calendar.Sink
	Archive    Archive
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Result describes the calendar a run produced.
type Result struct {
	Output  string
	Records int
	Entries int
	Dropped int
}

func NewRunner(rc RunnerConfig) *Runner {
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	source := client.SourceConfig{
		HTTPClient: rc.HTTPClient,
		Logger:     logger,
	}
	if rc.Archive != nil {
		source.Archive = rc.Archive
	}

	r := &Runner{
		settings: rc.Settings,
		csv:      client.NewCSVClient(source),
		sheet:    client.NewSheetClient(source),
		sink:     rc.Sink,
		archive:  rc.Archive,
		logger:   logger,
		now:      time.Now,
	}
	if rc.Settings.APIBaseURL != "" {
		r.api = client.NewAPIClient(client.APIConfig{
			BaseURL:  rc.Settings.APIBaseURL,
			MaxPages: rc.Settings.MaxPages,
			Source:   source,
		})
	}
	return r
}

// Matches fetches the match schedule, joins it with the team roster when
// one is configured and writes the match calendar to out. An empty out
// uses the configured output path.
func (r *Runner) Matches(ctx context.Context, query, out string) (Result, error) {
	if out == "" {
		out = r.settings.Output.Matches
	}
	started := r.now()
	result, err := r.matches(ctx, query, out)
	r.record(ModeMatches, started, result, err)
	return result, err
}

func (r *Runner) matches(ctx context.Context, query, out string) (Result, error) {
	result := Result{Output: out}

	if err := r.settings.RequireMatchSource(); err != nil {
		return result, err
	}

	matches, err := r.fetchMatches(ctx, query)
	if err != nil {
		return result, err
	}
	r.logger.Info("fetched matches", "source", r.settings.MatchSource, "records", len(matches))

	var index *roster.Index
	if r.settings.TeamCSVURL != "" {
		index, err = r.Teams(ctx)
		if err != nil {
			return result, err
		}
	}

	builder := r.builder(r.settings.Calendar.Name, index)
	doc, stats := builder.BuildMatches(matches)
	result.Records = stats.Records
	result.Entries = stats.Emitted
	result.Dropped = stats.Dropped

	if err := calendar.Write(ctx, r.sink, doc, out); err != nil {
		return result, err
	}

	r.logger.Info("wrote match calendar", "output", out, "entries", stats.Emitted, "dropped", stats.Dropped)
	return result, nil
}

func (r *Runner) fetchMatches(ctx context.Context, query string) ([]models.Match, error) {
	switch r.settings.MatchSource {
	case config.SourceAPI:
		raws, err := r.api.FetchAll(ctx, "matches", query)
		if err != nil {
			return nil, err
		}
		return parser.APIMatches(raws, nil), nil
	case config.SourceHTML, config.SourceCSV:
		if query != "" {
			r.logger.Warn("query is ignored for spreadsheet sources", "query", query)
		}
		rows, err := r.fetchRows(ctx, r.settings.MatchSource, r.settings.MatchCSVURL, r.settings.Output.Artifact)
		if err != nil {
			return nil, err
		}
		return parser.MatchRows(rows)
	default:
		return nil, fmt.Errorf("%w: unknown match_source %q", models.ErrSourceUnavailable, r.settings.MatchSource)
	}
}

func (r *Runner) fetchRows(ctx context.Context, source, url, artifact string) ([][]string, error) {
	if source == config.SourceHTML {
		return r.sheet.Fetch(ctx, url, artifact)
	}
	return r.csv.Fetch(ctx, url, artifact)
}

// Events fetches events from the API and writes the event calendar.
func (r *Runner) Events(ctx context.Context, query, out string) (Result, error) {
	if out == "" {
		out = r.settings.Output.Events
	}
	started := r.now()
	result, err := r.events(ctx, query, out)
	r.record(ModeEvents, started, result, err)
	return result, err
}

func (r *Runner) events(ctx context.Context, query, out string) (Result, error) {
	result := Result{Output: out}

	if err := r.settings.RequireAPI(); err != nil {
		return result, err
	}

	raws, err := r.api.FetchAll(ctx, "events", query)
	if err != nil {
		return result, err
	}
	events := parser.APIEvents(raws)
	r.logger.Info("fetched events", "records", len(events))

	builder := r.builder(r.settings.Calendar.Name+" Events", nil)
	doc, stats := builder.BuildEvents(events)
	result.Records = stats.Records
	result.Entries = stats.Emitted
	result.Dropped = stats.Dropped

	if err := calendar.Write(ctx, r.sink, doc, out); err != nil {
		return result, err
	}

	r.logger.Info("wrote event calendar", "output", out, "entries", stats.Emitted, "dropped", stats.Dropped)
	return result, nil
}

// Teams downloads the team sheet and builds the roster index.
func (r *Runner) Teams(ctx context.Context) (*roster.Index, error) {
	if err := r.settings.RequireTeamSource(); err != nil {
		return nil, err
	}

	rows, err := r.fetchRows(ctx, r.settings.TeamSource, r.settings.TeamCSVURL, r.settings.Output.TeamArtifact)
	if err != nil {
		return nil, err
	}

	teams, skipped, err := parser.TeamRows(rows, r.settings.MemberColumns)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		r.logger.Debug("skipped malformed team rows", "count", skipped)
	}

	index := roster.Build(teams)
	r.logger.Info("loaded team roster", "teams", index.Len())
	return index, nil
}

// Merge unions the entries of the calendars at paths into one calendar.
// Duplicate entries are kept.
func (r *Runner) Merge(ctx context.Context, paths []string, out string, meta calendar.Metadata) (Result, error) {
	if out == "" {
		out = r.settings.Output.Merged
	}
	started := r.now()
	result, err := r.merge(ctx, paths, out, meta)
	r.record(ModeMerge, started, result, err)
	return result, err
}

func (r *Runner) merge(ctx context.Context, paths []string, out string, meta calendar.Metadata) (Result, error) {
	result := Result{Output: out}

	if len(paths) == 0 {
		return result, fmt.Errorf("%w: no calendars to merge", models.ErrSourceUnavailable)
	}
	if meta.Name == "" {
		meta.Name = r.settings.Calendar.Name
	}
	if meta.Description == "" {
		meta.Description = r.settings.Calendar.Description
	}
	if meta.RefreshInterval == 0 {
		meta.RefreshInterval = r.settings.GetRefreshInterval()
	}
	if meta.Timezone == "" {
		meta.Timezone = r.settings.Timezone
	}

	doc, err := calendar.Merge(ctx, r.sink, paths, meta)
	if err != nil {
		return result, err
	}
	result.Records = len(doc.Entries)
	result.Entries = len(doc.Entries)

	if err := calendar.Write(ctx, r.sink, doc, out); err != nil {
		return result, err
	}

	r.logger.Info("wrote merged calendar", "output", out, "inputs", len(paths), "entries", len(doc.Entries))
	return result, nil
}

func (r *Runner) builder(name string, index *roster.Index) *calendar.Builder {
	return &calendar.Builder{
		Meta: calendar.Metadata{
			Name:            name,
			Description:     r.settings.Calendar.Description,
			RefreshInterval: r.settings.GetRefreshInterval(),
			Timezone:        r.settings.Timezone,
		},
		Location:       r.settings.GetLocation(),
		TitleSeparator: r.settings.TitleSeparator,
		Index:          index,
		Logger:         r.logger,
	}
}

func (r *Runner) record(mode string, started time.Time, result Result, runErr error) {
	if r.archive == nil {
		return
	}

	run := models.RunSummary{
		ID:         storage.RunID(started),
		Mode:       mode,
		Output:     result.Output,
		Entries:    result.Entries,
		Dropped:    result.Dropped,
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := r.archive.SaveRun(run); err != nil {
		r.logger.Warn("failed to archive run", "mode", mode, "error", err)
	}

	retention := r.settings.GetArchiveRetention()
	if retention <= 0 {
		return
	}
	removed, err := r.archive.CleanupOldFetches(started.Add(-retention))
	if err != nil {
		r.logger.Warn("failed to clean up fetch archive", "error", err)
		return
	}
	if removed > 0 {
		r.logger.Debug("cleaned up fetch archive", "removed", removed)
	}
}
