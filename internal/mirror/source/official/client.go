package official

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// SourceName is the variant identifier, also used as the output
// subdirectory for this pipeline.
const SourceName = "official"

// Client fetches server records from the official MCP registry using
// cursor-based pagination.
type Client struct {
	HTTPClient   *http.Client
	BaseURL      string
	PageSize     int
	PageDelay    time.Duration
	ShowProgress bool
}

// NewClient creates an official registry client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
		PageSize:   100,
		PageDelay:  150 * time.Millisecond,
	}
}

// Name returns the variant identifier for this source.
func (c *Client) Name() string {
	return SourceName
}

// Fetch retrieves the complete set of server records by following the
// pagination cursor until the registry signals exhaustion. Any page
// failure is fatal: an incomplete registry snapshot is worse than none.
func (c *Client) Fetch(ctx context.Context) ([]record.ServerRecord, error) {
	baseURL := strings.TrimSuffix(c.BaseURL, "/")
	if !strings.HasSuffix(baseURL, "/v0/servers") {
		baseURL = baseURL + "/v0/servers"
	}

	var bar *progressbar.ProgressBar
	if c.ShowProgress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Fetching official registry"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("servers"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
		)
	}

	var records []record.ServerRecord
	cursor := ""
	pageCount := 0

	for {
		pageCount++

		fetchURL := fmt.Sprintf("%s?limit=%d", baseURL, c.PageSize)
		if cursor != "" {
			fetchURL = fmt.Sprintf("%s&cursor=%s", fetchURL, url.QueryEscape(cursor))
		}

		page, err := c.fetchPage(ctx, fetchURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", pageCount, err)
		}

		for _, entry := range page.Servers {
			records = append(records, toRecord(entry))
		}

		if bar != nil {
			_ = bar.Add(len(page.Servers))
		}

		if page.Metadata.NextCursor == "" {
			break
		}
		cursor = page.Metadata.NextCursor

		// Be nice to the API
		time.Sleep(c.PageDelay)
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, fetchURL string) (*listResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page, nil
}
