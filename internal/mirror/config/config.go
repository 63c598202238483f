package config

import (
	"log"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the mirror configuration. Every value has a working
// default; environment variables (prefixed MCP_DOCK_) override them.
type Config struct {
	// Upstream API bases
	RegistryAPIBase string `env:"REGISTRY_API_BASE" envDefault:"https://registry.modelcontextprotocol.io"`
	SmitheryAPIBase string `env:"SMITHERY_API_BASE" envDefault:"https://registry.smithery.ai"`

	// Optional GitHub credential used only for star enrichment calls.
	// Anonymous calls work but are rate-limited much harder.
	GithubToken string `env:"GITHUB_TOKEN" envDefault:""`

	// OutputDir is the root of the generated dataset; each pipeline
	// variant writes under its own subdirectory.
	OutputDir string `env:"OUTPUT_DIR" envDefault:"data"`

	PageSize    int           `env:"PAGE_SIZE" envDefault:"100"`
	PageDelay   time.Duration `env:"PAGE_DELAY" envDefault:"150ms"`
	GithubDelay time.Duration `env:"GITHUB_DELAY" envDefault:"100ms"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	Verbose bool `env:"VERBOSE" envDefault:"false"`
}

// NewConfig loads configuration from the environment, reading a .env file
// first when one is present.
func NewConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix: "MCP_DOCK_",
	})
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return &cfg
}
