package report

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes JSON documents.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write serializes data followed by a newline and flushes.
func (w *JSONWriter) Write(data any) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}
