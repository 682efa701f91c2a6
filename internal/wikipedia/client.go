package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const userAgent = "mathai/1.0 (https://github.com/codeincraft/MathAi)"

// ErrNoResult is returned when the search finds no page with a usable summary.
var ErrNoResult = errors.New("no good Wikipedia search result was found")

type Client struct {
	baseURL    string
	topK       int
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL string, topK int, timeout time.Duration, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org"
	}
	if topK <= 0 {
		topK = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		topK:    topK,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Summary searches for query and renders the top pages as
// "Page: <title>\nSummary: <extract>" blocks separated by blank lines.
func (c *Client) Summary(ctx context.Context, query string) (string, error) {
	pages, err := c.Lookup(ctx, query)
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, p.Summary))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (c *Client) Lookup(ctx context.Context, query string) ([]Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}

	titles, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(titles))
	for _, title := range titles {
		summary, err := c.fetchSummary(ctx, title)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debug().Err(err).Str("title", title).Msg("skipping page without summary")
			continue
		}
		if strings.TrimSpace(summary.Extract) == "" {
			continue
		}
		pages = append(pages, Page{Title: summary.Title, Summary: summary.Extract})
	}

	if len(pages) == 0 {
		return nil, ErrNoResult
	}
	return pages, nil
}

// Search returns up to topK page titles matching query.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(c.topK))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	c.logger.Debug().Str("query", query).Msg("searching Wikipedia")

	var resp searchResponse
	if err := c.getJSON(ctx, "/w/api.php?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		titles = append(titles, hit.Title)
	}
	if len(titles) == 0 {
		return nil, ErrNoResult
	}
	return titles, nil
}

func (c *Client) fetchSummary(ctx context.Context, title string) (*pageSummary, error) {
	path := "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	var summary pageSummary
	if err := c.getJSON(ctx, path, &summary); err != nil {
		return nil, fmt.Errorf("failed to get summary for %q: %w", title, err)
	}
	if summary.Title == "" {
		summary.Title = title
	}
	return &summary, nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
