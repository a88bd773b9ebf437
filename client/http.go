package client

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aweist/league-calendar/models"
)

const UserAgent = "league-calendar/1.0 (github.com/aweist/league-calendar)"

// Archiver receives a copy of every payload a client downloads.
type Archiver interface {
	RecordFetch(rec models.FetchRecord) error
}

// SourceConfig is shared by every client constructor.
type SourceConfig struct {
	HTTPClient *http.Client
	Archive    Archiver
	Logger     *slog.Logger
}

func (c SourceConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

func (c SourceConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func download(ctx context.Context, httpClient *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", models.ErrSourceUnavailable, err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: request failed - URL: %s, Status: %d, Body: %s",
			models.ErrSourceUnavailable, maskQuery(url), resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var reader io.Reader = resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: creating gzip reader: %v", models.ErrSourceUnavailable, err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", models.ErrSourceUnavailable, err)
	}

	return data, nil
}

// maskQuery drops the query string so export keys do not end up in logs.
func maskQuery(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i] + "?[MASKED]"
	}
	return url
}

func archive(cfg SourceConfig, source, url string, payload []byte) {
	if cfg.Archive == nil {
		return
	}
	rec := models.FetchRecord{
		Source:    source,
		URL:       maskQuery(url),
		FetchedAt: time.Now().UTC(),
		Size:      len(payload),
		Payload:   payload,
	}
	if err := cfg.Archive.RecordFetch(rec); err != nil {
		cfg.logger().Warn("archiving fetch failed", "source", source, "error", err)
	}
}
