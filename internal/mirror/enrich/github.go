package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const userAgent = "mcp-dock-data-mirror"

// StarCache memoizes star counts per owner/repo for the lifetime of one
// run. It is constructed at run start and discarded at run end.
type StarCache map[string]int

var sshRepoRe = regexp.MustCompile(`github\.com:([^/]+)/([^/]+)$`)

// ParseGitHubRepo extracts owner/repo from the common GitHub URL formats
// (HTTPS path form and SSH colon form), stripping a trailing .git suffix.
// Both results are empty when the URL is not recognizably GitHub.
func ParseGitHubRepo(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ".git")
	if strings.Contains(raw, "github.com/") {
		parts := strings.Split(raw, "github.com/")
		path := parts[len(parts)-1]
		segs := strings.Split(strings.Trim(path, "/"), "/")
		if len(segs) >= 2 && segs[0] != "" && segs[1] != "" {
			return segs[0], segs[1]
		}
	}
	if m := sshRepoRe.FindStringSubmatch(raw); len(m) == 3 {
		return m[1], m[2]
	}
	return "", ""
}

// StarFetcher resolves repository URLs to GitHub star counts. Every
// failure mode yields zero stars; enrichment is strictly best-effort and
// never fails a run.
type StarFetcher struct {
	HTTPClient *http.Client
	// APIBase exists so tests can point the fetcher at a fake API.
	APIBase string
	Token   string
	Delay   time.Duration

	cache StarCache
}

// NewStarFetcher creates a fetcher backed by the given run-scoped cache.
func NewStarFetcher(cache StarCache, token string, delay time.Duration) *StarFetcher {
	return &StarFetcher{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIBase:    "https://api.github.com",
		Token:      token,
		Delay:      delay,
		cache:      cache,
	}
}

// Stars returns the star count for a repository URL, 0 on any ambiguity
// or failure. An unparseable URL never triggers a network call; a
// parseable one is looked up at most once per run.
func (f *StarFetcher) Stars(ctx context.Context, repoURL string) int {
	owner, repo := ParseGitHubRepo(repoURL)
	if owner == "" || repo == "" {
		return 0
	}

	key := owner + "/" + repo
	if stars, ok := f.cache[key]; ok {
		return stars
	}

	stars := f.fetch(ctx, owner, repo)
	f.cache[key] = stars

	// Stay under the anonymous/authenticated rate limits.
	time.Sleep(f.Delay)

	return stars
}

func (f *StarFetcher) fetch(ctx context.Context, owner, repo string) int {
	url := fmt.Sprintf("%s/repos/%s/%s", f.APIBase, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return 0
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var payload struct {
		Stars int `json:"stargazers_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0
	}
	return payload.Stars
}
