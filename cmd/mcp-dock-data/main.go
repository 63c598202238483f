package main

import (
	"github.com/OldJii/mcp-dock-data/internal/cli"
)

func main() {
	cli.Execute()
}
