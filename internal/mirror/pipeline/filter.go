package pipeline

import (
	"fmt"
	"io"
	"sort"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
	"github.com/OldJii/mcp-dock-data/pkg/printer"
)

// RejectReason classifies why a server was excluded from the dataset.
// The reasons are mutually exclusive per record.
type RejectReason string

const (
	// RejectNoDistribution means the record offers neither packages nor
	// remote endpoints.
	RejectNoDistribution RejectReason = "no-packages-or-remotes"
	// RejectOnlyRemotes means the record only offers remote endpoints.
	// Remote endpoint reliability is too low to recommend, so these are
	// excluded even though the schema supports them.
	RejectOnlyRemotes RejectReason = "only-remotes"
	// RejectUnsupportedPackages means none of the record's packages uses
	// a supported registry type.
	RejectUnsupportedPackages RejectReason = "no-supported-packages"
)

// supportedRegistryTypes are the package ecosystems a client can install
// from directly.
var supportedRegistryTypes = map[string]bool{
	"npm":  true,
	"pypi": true,
	"oci":  true,
}

// FilterStats aggregates installability decisions for operator reporting.
// It is never persisted to the dataset.
type FilterStats struct {
	Total         int                  `json:"total"`
	Accepted      int                  `json:"accepted"`
	Rejected      map[RejectReason]int `json:"rejected"`
	RegistryTypes map[string]int       `json:"registryTypes"`
}

// FilterInstallable retains only servers offering at least one package of
// a supported registry type, and explains every exclusion.
func FilterInstallable(in []record.ServerRecord) ([]record.ServerRecord, *FilterStats) {
	stats := &FilterStats{
		Rejected:      make(map[RejectReason]int),
		RegistryTypes: make(map[string]int),
	}

	out := make([]record.ServerRecord, 0, len(in))
	for _, r := range in {
		stats.Total++
		for _, pkg := range r.Packages {
			stats.RegistryTypes[pkg.RegistryType]++
		}

		if reason, ok := classify(r); !ok {
			stats.Rejected[reason]++
			continue
		}

		stats.Accepted++
		out = append(out, r)
	}

	return out, stats
}

func classify(r record.ServerRecord) (RejectReason, bool) {
	if len(r.Packages) == 0 {
		if len(r.Remotes) == 0 {
			return RejectNoDistribution, false
		}
		return RejectOnlyRemotes, false
	}

	for _, pkg := range r.Packages {
		if supportedRegistryTypes[pkg.RegistryType] {
			return "", true
		}
	}
	return RejectUnsupportedPackages, false
}

// Render writes the filter summary as a table for the operator watching
// the CI log.
func (s *FilterStats) Render(out io.Writer) error {
	table := printer.NewTablePrinter(out)
	table.SetHeaders("Result", "Count")
	table.AddRow("considered", s.Total)
	table.AddRow("accepted", s.Accepted)
	for _, reason := range []RejectReason{RejectNoDistribution, RejectOnlyRemotes, RejectUnsupportedPackages} {
		if count := s.Rejected[reason]; count > 0 {
			table.AddRow(fmt.Sprintf("rejected (%s)", reason), count)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(s.RegistryTypes) == 0 {
		return nil
	}

	types := make([]string, 0, len(s.RegistryTypes))
	for registryType := range s.RegistryTypes {
		types = append(types, registryType)
	}
	sort.Strings(types)

	histogram := printer.NewTablePrinter(out)
	histogram.SetHeaders("Registry type", "Packages")
	for _, registryType := range types {
		histogram.AddRow(registryType, s.RegistryTypes[registryType])
	}
	return histogram.Render()
}
