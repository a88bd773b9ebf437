package client

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aweist/league-calendar/models"
)

// CSVClient downloads a spreadsheet CSV export.
type CSVClient struct {
	cfg SourceConfig
}

func NewCSVClient(cfg SourceConfig) *CSVClient {
	return &CSVClient{cfg: cfg}
}

// Fetch downloads url, writes the raw bytes to artifactPath (skipped when
// empty) and returns the parsed rows.
func (c *CSVClient) Fetch(ctx context.Context, url, artifactPath string) ([][]string, error) {
	log := c.cfg.logger()
	log.Debug("downloading csv export", "url", maskQuery(url))

	data, err := download(ctx, c.cfg.httpClient(), url)
	if err != nil {
		return nil, err
	}

	if err := writeArtifact(artifactPath, data); err != nil {
		return nil, err
	}
	archive(c.cfg, "csv", url, data)

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}

	log.Debug("parsed csv export", "rows", len(rows), "bytes", len(data))
	return rows, nil
}

// ParseCSV splits comma-delimited data into rows. Rows may have differing
// lengths; callers look columns up by header name.
func ParseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV: %v", models.ErrSourceUnavailable, err)
	}

	return records, nil
}

func writeArtifact(path string, data []byte) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing artifact %s: %v", models.ErrSerialization, path, err)
	}
	return nil
}
