package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/OldJii/mcp-dock-data/internal/mirror/enrich"
	"github.com/OldJii/mcp-dock-data/internal/mirror/output"
	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// Source yields the normalized records of one upstream registry. Fetch is
// expected to follow pagination to exhaustion and to fail on any list
// page error.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]record.ServerRecord, error)
}

// Options selects the optional stages of a run. The two upstream variants
// share one pipeline and differ only in which stages are enabled.
type Options struct {
	// OutputDir is the dataset root; the variant writes under
	// OutputDir/<source name>.
	OutputDir string

	// Filter drops servers without an installable package.
	Filter bool
	// Enrich resolves repository URLs to GitHub star counts.
	Enrich bool
	// SortByStars orders the index by star count descending. Without it
	// the index keeps dedup order.
	SortByStars bool
	// Purge clears prior detail files before writing. The Smithery
	// variant runs without it, so detail files of servers removed
	// upstream persist until cleaned manually; that divergence is
	// deliberate and documented.
	Purge bool

	// Projection controls which popularity score the output carries.
	Projection record.ProjectionOptions
}

// Summary reports one run for the operator watching CI output. It is
// also what the CLI emits verbatim under --json.
type Summary struct {
	Source         string       `json:"source"`
	Fetched        int          `json:"fetched"`
	Unique         int          `json:"unique"`
	DetailsWritten int          `json:"detailsWritten"`
	WriteFailures  int          `json:"writeFailures"`
	FilterStats    *FilterStats `json:"filterStats,omitempty"`
}

// Run executes fetch, dedupe, the enabled optional stages, and the final
// write for one source.
func Run(ctx context.Context, src Source, stars *enrich.StarFetcher, opts Options) (*Summary, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}

	summary := &Summary{Source: src.Name(), Fetched: len(records)}

	records = Dedupe(records)
	summary.Unique = len(records)

	if opts.Filter {
		records, summary.FilterStats = FilterInstallable(records)
	}

	if opts.Enrich && stars != nil {
		for i := range records {
			records[i].Stars = stars.Stars(ctx, records[i].Repository.URL)
		}
	}

	if opts.SortByStars {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Stars > records[j].Stars
		})
	}

	index := make([]record.IndexEntry, 0, len(records))
	details := make([]record.DetailRecord, 0, len(records))
	for _, r := range records {
		index = append(index, record.ToIndexEntry(r, opts.Projection))
		details = append(details, record.ToDetail(r, opts.Projection))
	}

	writer := &output.Writer{
		Dir:   filepath.Join(opts.OutputDir, src.Name()),
		Purge: opts.Purge,
	}
	result, err := writer.Write(index, details)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}

	summary.DetailsWritten = result.DetailsWritten
	summary.WriteFailures = result.WriteFailures
	return summary, nil
}
