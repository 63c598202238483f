package smithery

import (
	"time"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

// listServer is the narrow shape returned by the paginated listing.
type listServer struct {
	QualifiedName string    `json:"qualifiedName"`
	DisplayName   string    `json:"displayName"`
	Description   string    `json:"description"`
	IconURL       string    `json:"iconUrl"`
	UseCount      int       `json:"useCount"`
	Homepage      string    `json:"homepage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// detailServer is the full per-server document. Deployment, security and
// bundle metadata present upstream are deliberately not modeled; the
// mirror never republishes them.
type detailServer struct {
	QualifiedName string       `json:"qualifiedName"`
	DisplayName   string       `json:"displayName"`
	Description   string       `json:"description"`
	IconURL       string       `json:"iconUrl"`
	UseCount      int          `json:"useCount"`
	Homepage      string       `json:"homepage"`
	CreatedAt     time.Time    `json:"createdAt"`
	Connections   []connection `json:"connections"`
	Tools         []tool       `json:"tools"`
}

type connection struct {
	Type          string         `json:"type"`
	URL           string         `json:"url"`
	DeploymentURL string         `json:"deploymentUrl"`
	ConfigSchema  map[string]any `json:"configSchema"`
}

type tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toRecord(detail detailServer) record.ServerRecord {
	connections := make([]record.Connection, 0, len(detail.Connections))
	for _, conn := range detail.Connections {
		url := conn.URL
		if url == "" {
			url = conn.DeploymentURL
		}
		connections = append(connections, record.Connection{
			Type:         conn.Type,
			URL:          url,
			ConfigSchema: conn.ConfigSchema,
		})
	}

	tools := make([]record.Tool, 0, len(detail.Tools))
	for _, t := range detail.Tools {
		tools = append(tools, record.Tool{Name: t.Name, Description: t.Description})
	}

	return record.ServerRecord{
		Name:        detail.QualifiedName,
		DisplayName: detail.DisplayName,
		Description: detail.Description,
		IconURL:     detail.IconURL,
		Status:      record.StatusActive,
		PublishedAt: detail.CreatedAt,
		WebsiteURL:  detail.Homepage,
		Connections: record.NormalizeConnections(connections),
		Tools:       tools,
		UseCount:    detail.UseCount,
	}
}
