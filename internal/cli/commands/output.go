package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// ValidOutput reports whether format is a known output format
func ValidOutput(format string) bool {
	switch format {
	case "", OutputTable, OutputYAML, OutputJSON:
		return true
	}
	return false
}

// Printer renders command results in the selected format
type Printer struct {
	Format string
	W      io.Writer
}

// Print writes v as YAML or JSON, or calls table for the default format
func (p *Printer) Print(v any, table func(w *tabwriter.Writer)) error {
	switch p.Format {
	case OutputJSON:
		enc := json.NewEncoder(p.W)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(p.W)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		w := tabwriter.NewWriter(p.W, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

// Structured reports whether output is machine readable, in which case
// commands skip decorative messages
func (p *Printer) Structured() bool {
	return p.Format == OutputJSON || p.Format == OutputYAML
}

// Messagef prints a human message in table mode only
func (p *Printer) Messagef(format string, args ...any) {
	if p.Structured() {
		return
	}
	fmt.Fprintf(p.W, format, args...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
