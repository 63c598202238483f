package pipeline

import (
	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// Dedupe collapses multiple versions of the same logical server name into
// one record. A record explicitly flagged as the latest version wins
// unconditionally; otherwise a strictly newer publish timestamp wins.
// Records without a name are dropped. First-seen insertion order is kept.
func Dedupe(in []record.ServerRecord) []record.ServerRecord {
	index := make(map[string]int, len(in))
	out := make([]record.ServerRecord, 0, len(in))

	for _, r := range in {
		if r.Name == "" {
			continue
		}

		i, seen := index[r.Name]
		if !seen {
			index[r.Name] = len(out)
			out = append(out, r)
			continue
		}

		if r.IsLatest || (!out[i].IsLatest && r.PublishedAt.After(out[i].PublishedAt)) {
			out[i] = r
		}
	}

	return out
}
