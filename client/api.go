package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aweist/league-calendar/models"
	"github.com/tidwall/gjson"
)

const DefaultMaxPages = 100

// APIClient reads paginated list resources shaped as
// {"results": [...], "next": "...", "count": N}.
type APIClient struct {
	baseURL  string
	maxPages int
	cfg      SourceConfig
}

type APIConfig struct {
	BaseURL  string
	MaxPages int
	Source   SourceConfig
}

func NewAPIClient(config APIConfig) *APIClient {
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &APIClient{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		maxPages: maxPages,
		cfg:      config.Source,
	}
}

// FetchAll follows the next cursor from {base}/{resource}?{query} and
// returns every result object. It stops when next is empty, when the
// reported count has been reached, when a cursor repeats, or after
// maxPages pages.
func (c *APIClient) FetchAll(ctx context.Context, resource, query string) ([]models.RawRecord, error) {
	log := c.cfg.logger()
	pageURL := c.resourceURL(resource, query)
	seen := make(map[string]bool)

	var results []models.RawRecord
	for page := 0; pageURL != ""; page++ {
		if page >= c.maxPages {
			log.Warn("pagination stopped at page limit", "resource", resource, "pages", page)
			break
		}
		if seen[pageURL] {
			log.Warn("pagination cursor repeated", "resource", resource, "url", maskQuery(pageURL))
			break
		}
		seen[pageURL] = true

		body, err := download(ctx, c.cfg.httpClient(), pageURL)
		if err != nil {
			return nil, err
		}
		archive(c.cfg, "api:"+resource, pageURL, body)

		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("%w: %s returned invalid JSON", models.ErrSourceUnavailable, maskQuery(pageURL))
		}
		resp := gjson.ParseBytes(body)
		list := resp.Get("results")
		if !list.IsArray() {
			return nil, fmt.Errorf("%w: %s response has no results", models.ErrSourceUnavailable, maskQuery(pageURL))
		}

		list.ForEach(func(_, value gjson.Result) bool {
			results = append(results, models.RawRecord(value.Raw))
			return true
		})
		log.Debug("fetched page", "resource", resource, "page", page+1, "results", len(results))

		if count := resp.Get("count"); count.Exists() && len(results) >= int(count.Int()) {
			break
		}

		next, err := c.resolve(pageURL, resp.Get("next").String())
		if err != nil {
			return nil, err
		}
		pageURL = next
	}

	return results, nil
}

func (c *APIClient) resourceURL(resource, query string) string {
	u := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	query = strings.TrimPrefix(query, "?")
	if query != "" {
		u += "?" + query
	}
	return u
}

// resolve turns a possibly relative next cursor into an absolute URL.
func (c *APIClient) resolve(current, next string) (string, error) {
	next = strings.TrimSpace(next)
	if next == "" {
		return "", nil
	}
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: parsing page URL: %v", models.ErrSourceUnavailable, err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: parsing next cursor %q: %v", models.ErrSourceUnavailable, next, err)
	}
	return base.ResolveReference(ref).String(), nil
}
