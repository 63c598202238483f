package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubRepo(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		expectedOwner string
		expectedRepo  string
	}{
		{"HTTPSForm", "https://github.com/owner/repo", "owner", "repo"},
		{"HTTPSWithGitSuffix", "https://github.com/owner/repo.git", "owner", "repo"},
		{"HTTPSWithSubpath", "https://github.com/owner/repo/tree/main/sub", "owner", "repo"},
		{"SSHColonForm", "git@github.com:owner/repo.git", "owner", "repo"},
		{"Empty", "", "", ""},
		{"NotAURL", "not-a-url", "", ""},
		{"NotGitHub", "https://gitlab.com/owner/repo", "", ""},
		{"MissingRepo", "https://github.com/owner", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo := ParseGitHubRepo(tc.url)
			assert.Equal(t, tc.expectedOwner, owner)
			assert.Equal(t, tc.expectedRepo, repo)
		})
	}
}

func newTestFetcher(apiBase string) *StarFetcher {
	f := NewStarFetcher(StarCache{}, "", 0)
	f.APIBase = apiBase
	return f
}

func TestStars_UnparseableURLMakesNoCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)

	assert.Equal(t, 0, fetcher.Stars(context.Background(), ""))
	assert.Equal(t, 0, fetcher.Stars(context.Background(), "not-a-url"))
	assert.Equal(t, 0, calls, "unparseable URLs must not hit the network")
}

func TestStars_CachesPerRepo(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/repos/owner/repo", r.URL.Path)
		fmt.Fprint(w, `{"stargazers_count": 123}`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)

	assert.Equal(t, 123, fetcher.Stars(context.Background(), "https://github.com/owner/repo"))
	assert.Equal(t, 123, fetcher.Stars(context.Background(), "https://github.com/owner/repo"))
	assert.Equal(t, 1, calls, "second lookup must be served from the cache")
}

func TestStars_FailureYieldsZeroAndIsCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)

	assert.Equal(t, 0, fetcher.Stars(context.Background(), "https://github.com/gone/repo"))
	assert.Equal(t, 0, fetcher.Stars(context.Background(), "https://github.com/gone/repo"))
	assert.Equal(t, 1, calls)
}

func TestStars_MissingCountDefaultsToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	assert.Equal(t, 0, fetcher.Stars(context.Background(), "https://github.com/owner/repo"))
}

func TestStars_SendsAuthorizationHeader(t *testing.T) {
	var auth, agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		agent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"stargazers_count": 1}`)
	}))
	defer server.Close()

	fetcher := NewStarFetcher(StarCache{}, "token123", 0)
	fetcher.APIBase = server.URL

	require.Equal(t, 1, fetcher.Stars(context.Background(), "https://github.com/owner/repo"))
	assert.Equal(t, "Bearer token123", auth)
	assert.Equal(t, "mcp-dock-data-mirror", agent)
}
