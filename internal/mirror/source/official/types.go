package official

import (
	"time"

	"github.com/modelcontextprotocol/registry/pkg/model"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// listResponse is one page of the /v0/servers listing.
type listResponse struct {
	Servers  []serverEntry `json:"servers"`
	Metadata listMetadata  `json:"metadata"`
}

type listMetadata struct {
	Count      int    `json:"count"`
	NextCursor string `json:"nextCursor"`
}

// serverEntry wraps the publisher-provided server document together with
// the registry-generated metadata envelope.
type serverEntry struct {
	Server serverJSON   `json:"server"`
	Meta   responseMeta `json:"_meta"`
}

// responseMeta carries the metadata the registry generates itself
// (publish timestamps, latest flag, lifecycle status).
type responseMeta struct {
	Official registryExtensions `json:"io.modelcontextprotocol.registry/official"`
}

type serverJSON struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Version     string            `json:"version"`
	WebsiteURL  string            `json:"websiteUrl"`
	Repository  model.Repository  `json:"repository"`
	Packages    []model.Package   `json:"packages"`
	Remotes     []model.Transport `json:"remotes"`
	Icons       []record.Icon     `json:"icons"`
}

type registryExtensions struct {
	Status      string    `json:"status"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsLatest    bool      `json:"isLatest"`
}

// toRecord maps one wire entry to the normalized internal record,
// resolving every optional field to a concrete default.
func toRecord(entry serverEntry) record.ServerRecord {
	srv := entry.Server
	official := entry.Meta.Official

	status := official.Status
	if status == "" {
		status = record.StatusActive
	}

	return record.ServerRecord{
		Name:        srv.Name,
		DisplayName: srv.Title,
		Description: srv.Description,
		IconURL:     record.SelectIconURL(srv.Icons),
		Version:     srv.Version,
		Status:      status,
		PublishedAt: official.PublishedAt,
		UpdatedAt:   official.UpdatedAt,
		WebsiteURL:  srv.WebsiteURL,
		Repository: record.Repository{
			URL:       srv.Repository.URL,
			Source:    srv.Repository.Source,
			Subfolder: srv.Repository.Subfolder,
		},
		Packages: record.NormalizePackages(srv.Packages),
		Remotes:  record.NormalizeRemotes(srv.Remotes),
		IsLatest: official.IsLatest,
	}
}
