package smithery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// SourceName is the variant identifier, also used as the output
// subdirectory for this pipeline.
const SourceName = "smithery"

// Client fetches server records from the Smithery registry. The listing
// uses numeric page pagination; the full shape of each server requires a
// second per-item request.
type Client struct {
	HTTPClient   *http.Client
	BaseURL      string
	PageSize     int
	PageDelay    time.Duration
	ShowProgress bool

	// DetailFailures counts servers whose detail fetch failed during the
	// last Fetch call. Those servers are skipped, not fatal.
	DetailFailures int
}

// NewClient creates a Smithery registry client.
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

// Fetch lists every server page by page, then resolves each listed server
// to its full document. A failed list page aborts the run; a failed
// per-server detail fetch is logged, counted and skipped.
func (c *Client) Fetch(ctx context.Context) ([]record.ServerRecord, error) {
	c.DetailFailures = 0

	listed, err := c.fetchAllPages(ctx)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if c.ShowProgress {
		bar = progressbar.NewOptions(len(listed),
			progressbar.OptionSetDescription("Fetching server details"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
	}

	records := make([]record.ServerRecord, 0, len(listed))
	for i, srv := range listed {
		detail, err := c.fetchDetail(ctx, srv.QualifiedName)
		if err != nil {
			log.Printf("Warning: skipping %s (%d/%d): %v", srv.QualifiedName, i+1, len(listed), err)
			c.DetailFailures++
			continue
		}
		records = append(records, toRecord(*detail))

		if bar != nil {
			_ = bar.Add(1)
		}

		time.Sleep(c.PageDelay)
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	return records, nil
}

func (c *Client) fetchAllPages(ctx context.Context) ([]listServer, error) {
	var all []listServer
	page := 1

	for {
		fetchURL := fmt.Sprintf("%s/servers?page=%d&pageSize=%d", c.BaseURL, page, c.PageSize)

		body, err := c.get(ctx, fetchURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		servers, err := decodeListPage(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", page, err)
		}

		all = append(all, servers...)

		// A short or empty page means the listing is exhausted. The empty
		// check also keeps the loop terminating when PageSize is
		// misconfigured to zero.
		if len(servers) == 0 || len(servers) < c.PageSize {
			break
		}
		page++

		time.Sleep(c.PageDelay)
	}

	return all, nil
}

// decodeListPage accepts both response shapes the API has been observed to
// return: an object with a servers field, or a bare array. A null or
// missing servers field reads as an empty page, not an error.
func decodeListPage(body []byte) ([]listServer, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var bare []listServer
		if err := json.Unmarshal(trimmed, &bare); err != nil {
			return nil, err
		}
		return bare, nil
	}

	var wrapped struct {
		Servers []listServer `json:"servers"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Servers, nil
}

func (c *Client) fetchDetail(ctx context.Context, qualifiedName string) (*detailServer, error) {
	fetchURL := fmt.Sprintf("%s/servers/%s", c.BaseURL, url.PathEscape(qualifiedName))

	body, err := c.get(ctx, fetchURL)
	if err != nil {
		return nil, err
	}

	var detail detailServer
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to parse detail response: %w", err)
	}

	return &detail, nil
}

func (c *Client) get(ctx context.Context, fetchURL string) ([]byte, error) {
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

	return io.ReadAll(resp.Body)
}
