package keyword

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/defclean/pkg/cleaner/markup"
)

// Summary describes one pass over a keyword database.
type Summary struct {
	Cleaner     string                `json:"cleaner" yaml:"cleaner"`
	Entries     int                   `json:"entries" yaml:"entries"`
	Cleaned     int                   `json:"cleaned" yaml:"cleaned"`
	Skipped     int                   `json:"skipped" yaml:"skipped"`
	Flavors     map[markup.Flavor]int `json:"flavors" yaml:"flavors"`
	InputBytes  int                   `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int                   `json:"output_bytes" yaml:"output_bytes"`
	Markup      *markup.Stats         `json:"markup" yaml:"markup"`
	Duration    time.Duration         `json:"duration_ns" yaml:"duration"`
}

// NewSummary creates an empty summary for the named cleaner.
func NewSummary(cleanerName string) *Summary {
	return &Summary{
		Cleaner: cleanerName,
		Flavors: make(map[markup.Flavor]int),
		Markup:  markup.NewStats(),
	}
}

func (s *Summary) record(result *markup.Result) {
	s.Flavors[result.Flavor]++
	s.Markup.Add(result.Stats)
}

// String returns a short human-readable summary.
func (s *Summary) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries: %d (%d cleaned, %d skipped)\n", s.Entries, s.Cleaned, s.Skipped))
	if len(s.Flavors) > 0 {
		sb.WriteString(fmt.Sprintf("Flavors: word=%d standard=%d\n",
			s.Flavors[markup.FlavorWord], s.Flavors[markup.FlavorStandard]))
	}
	sb.WriteString(fmt.Sprintf("File: %s -> %s in %v\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)),
		s.Duration.Round(time.Millisecond)))
	return sb.String()
}
