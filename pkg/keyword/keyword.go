// Package keyword cleans the definitions held in a keyword database export.
//
// An export is a JSON object mapping keyword ids to entries. Every entry
// that is an object with a string "definition" has that definition passed
// through a cleaner; everything else is copied through untouched and the
// original key order is preserved.
package keyword

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jmylchreest/defclean/internal/logger"
	"github.com/jmylchreest/defclean/pkg/cleaner"
	"github.com/jmylchreest/defclean/pkg/cleaner/markup"
)

// DefinitionField is the entry key holding markup.
const DefinitionField = "definition"

var (
	// ErrInvalidJSON is returned when the input does not parse as JSON.
	ErrInvalidJSON = errors.New("input is not valid JSON")

	// ErrNotObject is returned when the top-level JSON value is not an object.
	ErrNotObject = errors.New("top-level JSON value is not an object")
)

// prettyOptions matches a two-space indented dump with one element per line.
var prettyOptions = &pretty.Options{
	Width:  -1,
	Prefix: "",
	Indent: "  ",
}

// statsCleaner is implemented by cleaners that report per-fragment stats.
type statsCleaner interface {
	CleanWithStats(markup string) (*markup.Result, error)
}

// Process cleans every definition in data and returns the rewritten export.
// The first cleaner error aborts processing.
func Process(ctx context.Context, data []byte, c cleaner.Cleaner) ([]byte, *Summary, error) {
	start := time.Now()
	summary := NewSummary(c.Name())
	summary.InputBytes = len(data)

	data, err := decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding input: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil, ErrNotObject
	}

	var (
		buf     bytes.Buffer
		procErr error
		first   = true
	)
	buf.WriteByte('{')
	root.ForEach(func(key, value gjson.Result) bool {
		if err := ctx.Err(); err != nil {
			procErr = err
			return false
		}
		summary.Entries++

		entry, err := cleanEntry(c, key.String(), value, summary)
		if err != nil {
			procErr = fmt.Errorf("cleaning entry %q: %w", key.String(), err)
			return false
		}

		name, err := encodeString(key.String())
		if err != nil {
			procErr = fmt.Errorf("encoding key %q: %w", key.String(), err)
			return false
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(entry)
		return true
	})
	if procErr != nil {
		return nil, nil, procErr
	}
	buf.WriteByte('}')

	out := pretty.PrettyOptions(buf.Bytes(), prettyOptions)
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}

	summary.OutputBytes = len(out)
	summary.Duration = time.Since(start)
	return out, summary, nil
}

// cleanEntry returns the raw JSON for one entry with its definition cleaned.
func cleanEntry(c cleaner.Cleaner, key string, value gjson.Result, summary *Summary) ([]byte, error) {
	raw := []byte(value.Raw)
	if !value.IsObject() {
		return raw, nil
	}

	def := value.Get(DefinitionField)
	if !def.Exists() {
		return raw, nil
	}
	if def.Type != gjson.String {
		summary.Skipped++
		logger.Warn("skipping non-string definition", "key", key, "type", def.Type.String())
		return raw, nil
	}

	cleaned, err := cleanDefinition(c, def.String(), summary)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeString(cleaned)
	if err != nil {
		return nil, err
	}

	summary.Cleaned++
	logger.Debug("cleaned definition", "key", key, "in", len(def.String()), "out", len(cleaned))
	return sjson.SetRawBytes(raw, DefinitionField, encoded)
}

// cleanDefinition runs the cleaner, collecting stats when it reports them.
func cleanDefinition(c cleaner.Cleaner, definition string, summary *Summary) (string, error) {
	sc, ok := c.(statsCleaner)
	if !ok {
		return c.Clean(definition)
	}
	result, err := sc.CleanWithStats(definition)
	if err != nil {
		return "", err
	}
	summary.record(result)
	return result.Content, nil
}

// decode strips a UTF-8 byte order mark and converts UTF-16 input
// (detected by its BOM) to UTF-8.
func decode(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	return out, err
}

// encodeString renders s as a JSON string without escaping markup characters.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
