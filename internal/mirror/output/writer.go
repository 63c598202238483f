package output

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
)

const detailsDirName = "details"

// Writer persists one dataset variant: an aggregate index file plus one
// detail file per server, under a dedicated directory.
type Writer struct {
	// Dir is the variant's output directory, e.g. data/official.
	Dir string
	// Purge removes every existing detail file before writing, so servers
	// that disappeared upstream leave no orphaned files behind.
	Purge bool
}

// Result reports what a Write call produced.
type Result struct {
	DetailsWritten int
	WriteFailures  int
}

// Write persists the index and detail files. Directory creation and index
// serialization failures are fatal; a single detail file failure is
// logged, counted and skipped.
func (w *Writer) Write(index []record.IndexEntry, details []record.DetailRecord) (*Result, error) {
	detailsDir := filepath.Join(w.Dir, detailsDirName)
	if err := os.MkdirAll(detailsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", detailsDir, err)
	}

	if w.Purge {
		if err := purgeDir(detailsDir); err != nil {
			return nil, err
		}
	}

	if index == nil {
		index = []record.IndexEntry{}
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	indexPath := filepath.Join(w.Dir, "index.json")
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", indexPath, err)
	}

	result := &Result{}
	for _, detail := range details {
		if err := w.writeDetail(detailsDir, detail); err != nil {
			log.Printf("Warning: failed to write detail for %s: %v", detail.Name, err)
			result.WriteFailures++
			continue
		}
		result.DetailsWritten++
	}

	return result, nil
}

func (w *Writer) writeDetail(detailsDir string, detail record.DetailRecord) error {
	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal detail: %w", err)
	}

	path := filepath.Join(detailsDir, record.SafeFileName(detail.Name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func purgeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", entry.Name(), err)
		}
	}
	return nil
}
