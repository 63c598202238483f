package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/registry/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldJii/mcp-dock-data/internal/mirror/enrich"
	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// stubSource replays a fixed record set, standing in for an upstream
// registry.
type stubSource struct {
	name    string
	records []record.ServerRecord
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]record.ServerRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

// fakeGitHub serves star counts per owner/repo path.
func fakeGitHub(t *testing.T, stars map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, ok := stars[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"stargazers_count": %d}`, count)
	}))
}

func readIndex(t *testing.T, dir string) []record.IndexEntry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	var index []record.IndexEntry
	require.NoError(t, json.Unmarshal(data, &index))
	return index
}

func listDetails(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, "details"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRun_EndToEnd(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	// Two versions of the same server (the flagged one pointing at the
	// lower-starred repository) plus one unique server.
	src := &stubSource{
		name: "official",
		records: []record.ServerRecord{
			{
				Name:        "io.test/dup",
				Version:     "2.0.0",
				PublishedAt: newer,
				Repository:  record.Repository{URL: "https://github.com/test/popular"},
				Packages:    []model.Package{{RegistryType: "npm", Identifier: "@test/dup"}},
			},
			{
				Name:        "io.test/dup",
				Version:     "1.0.0",
				PublishedAt: older,
				IsLatest:    true,
				Repository:  record.Repository{URL: "https://github.com/test/modest"},
				Packages:    []model.Package{{RegistryType: "npm", Identifier: "@test/dup"}},
			},
			{
				Name:       "io.test/unique",
				Version:    "3.0.0",
				Repository: record.Repository{URL: "https://github.com/test/popular"},
				Packages:   []model.Package{{RegistryType: "pypi", Identifier: "test-unique"}},
			},
		},
	}

	github := fakeGitHub(t, map[string]int{
		"/repos/test/popular": 500,
		"/repos/test/modest":  10,
	})
	defer github.Close()

	stars := enrich.NewStarFetcher(enrich.StarCache{}, "", 0)
	stars.APIBase = github.URL

	outputDir := t.TempDir()
	summary, err := Run(context.Background(), src, stars, Options{
		OutputDir:   outputDir,
		Filter:      true,
		Enrich:      true,
		SortByStars: true,
		Purge:       true,
		Projection:  record.ProjectionOptions{WithStars: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 2, summary.Unique)
	assert.Equal(t, 2, summary.DetailsWritten)
	assert.Equal(t, 0, summary.WriteFailures)

	variantDir := filepath.Join(outputDir, "official")
	index := readIndex(t, variantDir)
	require.Len(t, index, 2)

	// Sorted by stars descending; the deduplicated server carries the
	// flagged version's (lower-starred) repository.
	assert.Equal(t, "io.test/unique", index[0].Name)
	require.NotNil(t, index[0].Stars)
	assert.Equal(t, 500, *index[0].Stars)

	assert.Equal(t, "io.test/dup", index[1].Name)
	require.NotNil(t, index[1].Stars)
	assert.Equal(t, 10, *index[1].Stars)

	assert.ElementsMatch(t,
		[]string{"io.test__dup.json", "io.test__unique.json"},
		listDetails(t, variantDir))

	// Detail record identity matches the index entry and the file name.
	data, err := os.ReadFile(filepath.Join(variantDir, "details", "io.test__dup.json"))
	require.NoError(t, err)
	var detail record.DetailRecord
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, "io.test/dup", detail.Name)
	assert.Equal(t, "1.0.0", detail.Version)
}

func TestRun_Idempotent(t *testing.T) {
	src := &stubSource{
		name: "official",
		records: []record.ServerRecord{
			{
				Name:     "io.test/server",
				Version:  "1.0.0",
				Packages: []model.Package{{RegistryType: "npm", Identifier: "@test/server"}},
			},
		},
	}

	outputDir := t.TempDir()
	opts := Options{
		OutputDir:   outputDir,
		Filter:      true,
		SortByStars: true,
		Purge:       true,
		Projection:  record.ProjectionOptions{WithStars: true},
	}

	_, err := Run(context.Background(), src, nil, opts)
	require.NoError(t, err)

	variantDir := filepath.Join(outputDir, "official")
	firstIndex, err := os.ReadFile(filepath.Join(variantDir, "index.json"))
	require.NoError(t, err)

	// A stale detail file from a server no longer upstream must not
	// survive the second run.
	stale := filepath.Join(variantDir, "details", "io.test__gone.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))

	_, err = Run(context.Background(), src, nil, opts)
	require.NoError(t, err)

	secondIndex, err := os.ReadFile(filepath.Join(variantDir, "index.json"))
	require.NoError(t, err)
	assert.Equal(t, firstIndex, secondIndex, "unchanged upstream data must produce byte-identical output")

	assert.Equal(t, []string{"io.test__server.json"}, listDetails(t, variantDir))
}

func TestRun_NoPurgeKeepsStaleDetails(t *testing.T) {
	src := &stubSource{
		name: "smithery",
		records: []record.ServerRecord{
			{Name: "user/server"},
		},
	}

	outputDir := t.TempDir()
	opts := Options{
		OutputDir:  outputDir,
		Projection: record.ProjectionOptions{WithUseCount: true},
	}

	_, err := Run(context.Background(), src, nil, opts)
	require.NoError(t, err)

	variantDir := filepath.Join(outputDir, "smithery")
	stale := filepath.Join(variantDir, "details", "user__gone.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))

	_, err = Run(context.Background(), src, nil, opts)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"user__server.json", "user__gone.json"},
		listDetails(t, variantDir))
}

func TestRun_FetchFailureIsFatal(t *testing.T) {
	src := &stubSource{name: "official", err: fmt.Errorf("unexpected status code: 502")}

	_, err := Run(context.Background(), src, nil, Options{OutputDir: t.TempDir()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "official")
}

func TestRun_SortIsStableOnTies(t *testing.T) {
	src := &stubSource{
		name: "official",
		records: []record.ServerRecord{
			{Name: "io.test/a", Packages: []model.Package{{RegistryType: "npm"}}},
			{Name: "io.test/b", Packages: []model.Package{{RegistryType: "npm"}}},
		},
	}

	outputDir := t.TempDir()
	_, err := Run(context.Background(), src, nil, Options{
		OutputDir:   outputDir,
		Filter:      true,
		SortByStars: true,
		Projection:  record.ProjectionOptions{WithStars: true},
	})
	require.NoError(t, err)

	index := readIndex(t, filepath.Join(outputDir, "official"))
	require.Len(t, index, 2)
	assert.Equal(t, "io.test/a", index[0].Name)
	assert.Equal(t, "io.test/b", index[1].Name)
}
