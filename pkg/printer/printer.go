package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Printer writes data in a fixed output format.
type Printer struct {
	out io.Writer
}

// New creates a new printer writing to stdout.
func New() *Printer {
	return &Printer{out: os.Stdout}
}

// SetOutput sets the output writer.
func (p *Printer) SetOutput(out io.Writer) {
	p.out = out
}

// PrintJSON prints data in indented JSON format.
func (p *Printer) PrintJSON(data any) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	_, _ = fmt.Fprintf(os.Stdout, "✓ %s\n", message)
}

// PrintError prints an error message.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	_, _ = fmt.Fprintf(os.Stdout, "Warning: %s\n", message)
}

// PrintInfo prints an info message.
func PrintInfo(message string) {
	_, _ = fmt.Fprintf(os.Stdout, "%s\n", message)
}
