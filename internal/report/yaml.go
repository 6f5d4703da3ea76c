package report

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes YAML documents.
type YAMLWriter struct {
	w      *bufio.Writer
	indent int
}

// NewYAMLWriter creates a YAML writer. An indent below 2 falls back to 2.
func NewYAMLWriter(w io.Writer, indent int) *YAMLWriter {
	if indent < 2 {
		indent = 2
	}
	return &YAMLWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// Write serializes data as a single YAML document and flushes.
func (w *YAMLWriter) Write(data any) error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(w.indent)

	if err := encoder.Encode(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
