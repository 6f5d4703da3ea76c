// Package report writes run reports describing what a cleaning pass did.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/jmylchreest/defclean/internal/version"
	"github.com/jmylchreest/defclean/pkg/keyword"
)

// Format represents report format types.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Report is the document written after a run.
type Report struct {
	Tool        string           `json:"tool" yaml:"tool"`
	Version     string           `json:"version" yaml:"version"`
	Input       string           `json:"input" yaml:"input"`
	Output      string           `json:"output,omitempty" yaml:"output,omitempty"`
	DryRun      bool             `json:"dry_run" yaml:"dry_run"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Summary     *keyword.Summary `json:"summary" yaml:"summary"`
}

// New builds a report for a finished run.
func New(opts keyword.Options, summary *keyword.Summary) *Report {
	r := &Report{
		Tool:        "defclean",
		Version:     version.String(),
		Input:       opts.Input,
		DryRun:      opts.DryRun,
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
	}
	if !opts.DryRun {
		r.Output = opts.Output
	}
	return r
}

// Writer handles report serialization.
type Writer interface {
	// Write serializes a single document.
	Write(data any) error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatYAML:
		return NewYAMLWriter(w, len(cfg.indent)), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteFile serializes r to path on fs.
func WriteFile(fs afero.Fs, path string, format Format, r *Report) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}

	w, err := NewWriter(f, format)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Write(r); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return f.Close()
}
