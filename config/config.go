package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aweist/league-calendar/models"
)

const (
	SourceCSV  = "csv"
	SourceHTML = "html"
	SourceAPI  = "api"
)

type Config struct {
	MatchCSVURL        string         `json:"match_csv_url"`
	TeamCSVURL         string         `json:"team_csv_url"`
	MatchSource        string         `json:"match_source"`
	TeamSource         string         `json:"team_source"`
	APIBaseURL         string         `json:"api_base_url"`
	MaxPages           int            `json:"max_pages"`
	Timezone           string         `json:"timezone"`
	TitleSeparator     string         `json:"title_separator"`
	MemberColumns      int            `json:"member_columns"`
	ArchivePath        string         `json:"archive_path"`
	ArchiveRetention   string         `json:"archive_retention"`
	GCSCredentialsFile string         `json:"gcs_credentials_file"`
	Calendar           CalendarConfig `json:"calendar"`
	Output             OutputConfig   `json:"output"`
}

type CalendarConfig struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	RefreshInterval string `json:"refresh_interval"`
}

type OutputConfig struct {
	Matches      string `json:"matches"`
	Events       string `json:"events"`
	Merged       string `json:"merged"`
	Artifact     string `json:"artifact"`
	TeamArtifact string `json:"team_artifact"`
}

// Load reads the JSON settings file at path, fills defaults and applies
// environment overrides. The result is passed explicitly to every
// component that needs it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.fillDefaults()

	return cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.MaxPages <= 0 {
		c.MaxPages = 100
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.TitleSeparator == "" {
		c.TitleSeparator = "at"
	}
	if c.MemberColumns <= 0 {
		c.MemberColumns = 8
	}
	if c.TeamSource == "" {
		c.TeamSource = SourceCSV
	}
	if c.MatchSource == "" {
		if c.APIBaseURL != "" && c.MatchCSVURL == "" {
			c.MatchSource = SourceAPI
		} else {
			c.MatchSource = SourceCSV
		}
	}
	if c.Calendar.Name == "" {
		c.Calendar.Name = "League Matches"
	}
	if c.Calendar.RefreshInterval == "" {
		c.Calendar.RefreshInterval = "1h"
	}
	if c.Output.Matches == "" {
		c.Output.Matches = "matches.ics"
	}
	if c.Output.Events == "" {
		c.Output.Events = "events.ics"
	}
	if c.Output.Merged == "" {
		c.Output.Merged = "all.ics"
	}
	if c.Output.Artifact == "" {
		c.Output.Artifact = "matches.csv"
	}
	if c.Output.TeamArtifact == "" {
		c.Output.TeamArtifact = "teams.csv"
	}
	if c.ArchiveRetention == "" {
		c.ArchiveRetention = "2160h"
	}
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getEnv("LEAGUE_CAL_API_BASE_URL", c.APIBaseURL)
	c.MatchCSVURL = getEnv("LEAGUE_CAL_MATCH_CSV_URL", c.MatchCSVURL)
	c.TeamCSVURL = getEnv("LEAGUE_CAL_TEAM_CSV_URL", c.TeamCSVURL)
	c.ArchivePath = getEnv("LEAGUE_CAL_ARCHIVE_PATH", c.ArchivePath)
	c.MaxPages = getEnvInt("LEAGUE_CAL_MAX_PAGES", c.MaxPages)
}

func (c *Config) Validate() error {
	switch c.MatchSource {
	case SourceCSV, SourceHTML, SourceAPI:
	default:
		return fmt.Errorf("invalid match_source %q", c.MatchSource)
	}

	switch c.TeamSource {
	case SourceCSV, SourceHTML:
	default:
		return fmt.Errorf("invalid team_source %q", c.TeamSource)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	if _, err := time.ParseDuration(c.Calendar.RefreshInterval); err != nil {
		return fmt.Errorf("invalid calendar.refresh_interval: %w", err)
	}

	if _, err := time.ParseDuration(c.ArchiveRetention); err != nil {
		return fmt.Errorf("invalid archive_retention: %w", err)
	}

	if c.TitleSeparator != "at" && c.TitleSeparator != "@" {
		return fmt.Errorf("title_separator must be \"at\" or \"@\"")
	}

	return nil
}

// RequireMatchSource reports whether the settings name a source for matches.
func (c *Config) RequireMatchSource() error {
	if c.MatchSource == SourceAPI {
		if c.APIBaseURL == "" {
			return fmt.Errorf("%w: api_base_url is required for match_source api", models.ErrSourceUnavailable)
		}
		return nil
	}
	if c.MatchCSVURL == "" {
		return fmt.Errorf("%w: match_csv_url is required", models.ErrSourceUnavailable)
	}
	return nil
}

func (c *Config) RequireAPI() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api_base_url is required", models.ErrSourceUnavailable)
	}
	return nil
}

func (c *Config) RequireTeamSource() error {
	if c.TeamCSVURL == "" {
		return fmt.Errorf("%w: team_csv_url is required", models.ErrSourceUnavailable)
	}
	return nil
}

func (c *Config) GetRefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Calendar.RefreshInterval)
	return d
}

func (c *Config) GetArchiveRetention() time.Duration {
	d, _ := time.ParseDuration(c.ArchiveRetention)
	return d
}

func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
