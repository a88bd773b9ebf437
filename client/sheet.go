package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aweist/league-calendar/models"
)

// SheetClient downloads the HTML rendering of a published spreadsheet and
// turns its first table into rows, for sheets whose CSV export is disabled.
type SheetClient struct {
	cfg SourceConfig
}

func NewSheetClient(cfg SourceConfig) *SheetClient {
	return &SheetClient{cfg: cfg}
}

func (c *SheetClient) Fetch(ctx context.Context, url, artifactPath string) ([][]string, error) {
	c.cfg.logger().Debug("downloading published sheet", "url", maskQuery(url))

	data, err := download(ctx, c.cfg.httpClient(), url)
	if err != nil {
		return nil, err
	}

	if err := writeArtifact(artifactPath, data); err != nil {
		return nil, err
	}
	archive(c.cfg, "html", url, data)

	return ParseSheetHTML(bytes.NewReader(data))
}

// ParseSheetHTML returns the text of every non-empty row of the first table.
// Row-number gutters emitted by the sheet renderer are dropped so that
// column positions match the CSV export.
func ParseSheetHTML(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", models.ErrSourceUnavailable, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table in published sheet", models.ErrSourceUnavailable)
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			if cell.HasClass("row-headers-background") || cell.HasClass("freezebar-cell") {
				return
			}
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if hasContent(row) {
			rows = append(rows, row)
		}
	})

	return rows, nil
}

func hasContent(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}
