package record

import (
	"strings"
	"time"

	"github.com/modelcontextprotocol/registry/pkg/model"
)

// StatusActive is the status assigned to servers whose upstream record
// carries no lifecycle status.
const StatusActive = "active"

// ServerRecord is the fully-defaulted internal form every source adapter
// produces. All optional upstream fields are resolved to concrete values
// here, so later pipeline stages never need fallback logic.
type ServerRecord struct {
	Name        string
	DisplayName string
	Description string
	IconURL     string
	Version     string
	Status      string
	PublishedAt time.Time
	UpdatedAt   time.Time
	WebsiteURL  string
	Repository  Repository
	Packages    []model.Package
	Remotes     []model.Transport
	Connections []Connection
	Tools       []Tool
	IsLatest    bool
	UseCount    int
	Stars       int
}

// Repository references the server's source code repository.
type Repository struct {
	URL       string `json:"url"`
	Source    string `json:"source,omitempty"`
	Subfolder string `json:"subfolder,omitempty"`
}

// Icon is one icon candidate attached to an upstream server record.
type Icon struct {
	Src      string `json:"src"`
	MimeType string `json:"mimeType,omitempty"`
	Sizes    string `json:"sizes,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// Connection describes how a client connects to a hosted server.
type Connection struct {
	Type         string         `json:"type"`
	URL          string         `json:"url,omitempty"`
	ConfigSchema map[string]any `json:"configSchema,omitempty"`
}

// Tool is a capability descriptor advertised by a server.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// connectionTypeDefault is applied when upstream omits a connection type.
const connectionTypeDefault = "stdio"

// IndexEntry is the narrowed projection stored in the aggregate index file.
type IndexEntry struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description"`
	IconURL     string      `json:"iconUrl,omitempty"`
	Stars       *int        `json:"stars,omitempty"`
	UseCount    *int        `json:"useCount,omitempty"`
	Status      string      `json:"status"`
	PublishedAt string      `json:"publishedAt,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
}

// DetailRecord is the full per-server projection stored in an individual
// detail file. README content is deliberately absent; consumers fetch it
// live from the repository instead.
type DetailRecord struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	IconURL     string            `json:"iconUrl,omitempty"`
	Version     string            `json:"version,omitempty"`
	Status      string            `json:"status"`
	PublishedAt string            `json:"publishedAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
	WebsiteURL  string            `json:"websiteUrl,omitempty"`
	Repository  *Repository       `json:"repository,omitempty"`
	Packages    []model.Package   `json:"packages,omitempty"`
	Remotes     []model.Transport `json:"remotes,omitempty"`
	Connections []Connection      `json:"connections,omitempty"`
	Tools       []Tool            `json:"tools,omitempty"`
	Stars       *int              `json:"stars,omitempty"`
	UseCount    *int              `json:"useCount,omitempty"`
}

// ProjectionOptions controls which optional score fields appear in the
// emitted projections. Each pipeline variant carries exactly one of them.
type ProjectionOptions struct {
	WithStars    bool
	WithUseCount bool
}

// ToIndexEntry maps a normalized record to its index projection.
func ToIndexEntry(r ServerRecord, opts ProjectionOptions) IndexEntry {
	entry := IndexEntry{
		Name:        r.Name,
		DisplayName: displayName(r),
		Description: r.Description,
		IconURL:     r.IconURL,
		Status:      status(r),
		PublishedAt: formatTime(r.PublishedAt),
		Repository:  repositoryRef(r),
	}
	if opts.WithStars {
		stars := r.Stars
		entry.Stars = &stars
	}
	if opts.WithUseCount {
		useCount := r.UseCount
		entry.UseCount = &useCount
	}
	return entry
}

// ToDetail maps a normalized record to its detail projection.
func ToDetail(r ServerRecord, opts ProjectionOptions) DetailRecord {
	detail := DetailRecord{
		Name:        r.Name,
		DisplayName: displayName(r),
		Description: r.Description,
		IconURL:     r.IconURL,
		Version:     r.Version,
		Status:      status(r),
		PublishedAt: formatTime(r.PublishedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
		WebsiteURL:  r.WebsiteURL,
		Repository:  repositoryRef(r),
		Packages:    NormalizePackages(r.Packages),
		Remotes:     NormalizeRemotes(r.Remotes),
		Connections: NormalizeConnections(r.Connections),
		Tools:       normalizeTools(r.Tools),
	}
	if opts.WithStars {
		stars := r.Stars
		detail.Stars = &stars
	}
	if opts.WithUseCount {
		useCount := r.UseCount
		detail.UseCount = &useCount
	}
	return detail
}

func displayName(r ServerRecord) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

func status(r ServerRecord) string {
	if r.Status != "" {
		return r.Status
	}
	return StatusActive
}

func repositoryRef(r ServerRecord) *Repository {
	if r.Repository.URL == "" {
		return nil
	}
	repo := r.Repository
	return &repo
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SafeFileName derives the on-disk file stem for a server name by
// replacing every path separator with a double underscore. The transform
// is one-way; it only needs to be deterministic and collision-free.
func SafeFileName(name string) string {
	return strings.ReplaceAll(name, "/", "__")
}

// SelectIconURL picks one icon from a set of candidates: a light-themed
// icon first, then an icon with no theme tag, then the first candidate
// with a source URL at all.
func SelectIconURL(icons []Icon) string {
	for _, icon := range icons {
		if icon.Theme == "light" && icon.Src != "" {
			return icon.Src
		}
	}
	for _, icon := range icons {
		if icon.Theme == "" && icon.Src != "" {
			return icon.Src
		}
	}
	for _, icon := range icons {
		if icon.Src != "" {
			return icon.Src
		}
	}
	return ""
}

// NormalizePackages drops malformed nested descriptors from each package:
// environment variables and transport headers without a name, and named
// arguments without a name. Positional arguments carry no name by
// definition and are kept.
func NormalizePackages(packages []model.Package) []model.Package {
	if len(packages) == 0 {
		return nil
	}
	out := make([]model.Package, 0, len(packages))
	for _, pkg := range packages {
		pkg.EnvironmentVariables = namedKeyValues(pkg.EnvironmentVariables)
		pkg.Transport.Headers = namedKeyValues(pkg.Transport.Headers)
		pkg.RuntimeArguments = namedArguments(pkg.RuntimeArguments)
		pkg.PackageArguments = namedArguments(pkg.PackageArguments)
		out = append(out, pkg)
	}
	return out
}

// NormalizeRemotes drops remote headers without a name.
func NormalizeRemotes(remotes []model.Transport) []model.Transport {
	if len(remotes) == 0 {
		return nil
	}
	out := make([]model.Transport, 0, len(remotes))
	for _, remote := range remotes {
		remote.Headers = namedKeyValues(remote.Headers)
		out = append(out, remote)
	}
	return out
}

// NormalizeConnections applies the default connection type where upstream
// omitted one.
func NormalizeConnections(connections []Connection) []Connection {
	if len(connections) == 0 {
		return nil
	}
	out := make([]Connection, 0, len(connections))
	for _, conn := range connections {
		if conn.Type == "" {
			conn.Type = connectionTypeDefault
		}
		out = append(out, conn)
	}
	return out
}

func normalizeTools(tools []Tool) []Tool {
	var out []Tool
	for _, tool := range tools {
		if tool.Name == "" {
			continue
		}
		out = append(out, tool)
	}
	return out
}

func namedKeyValues(in []model.KeyValueInput) []model.KeyValueInput {
	var out []model.KeyValueInput
	for _, kv := range in {
		if kv.Name == "" {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func namedArguments(in []model.Argument) []model.Argument {
	var out []model.Argument
	for _, arg := range in {
		if arg.Type == model.ArgumentTypeNamed && arg.Name == "" {
			continue
		}
		out = append(out, arg)
	}
	return out
}
