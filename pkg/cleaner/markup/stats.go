package markup

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures what the cleaner did to one or more fragments.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	CommentsRemoved   int            `json:"comments_removed" yaml:"comments_removed"`
	ElementsDropped   map[string]int `json:"elements_dropped" yaml:"elements_dropped"`     // tag -> count
	ElementsUnwrapped map[string]int `json:"elements_unwrapped" yaml:"elements_unwrapped"` // tag -> count
	AttributesRemoved int            `json:"attributes_removed" yaml:"attributes_removed"`
	StylesDropped     int            `json:"style_declarations_dropped" yaml:"style_declarations_dropped"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration"`
	OutputDuration    time.Duration `json:"output_duration_ns" yaml:"output_duration"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsDropped:   make(map[string]int),
		ElementsUnwrapped: make(map[string]int),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalUnwrapped returns the number of elements unwrapped across all tags.
func (s *Stats) TotalUnwrapped() int {
	total := 0
	for _, count := range s.ElementsUnwrapped {
		total += count
	}
	return total
}

// RecordUnwrap records that an element was replaced by its children.
func (s *Stats) RecordUnwrap(tag string) {
	s.ElementsUnwrapped[strings.ToLower(tag)]++
}

// RecordDrop records that an element was removed with its contents.
func (s *Stats) RecordDrop(tag string) {
	s.ElementsDropped[strings.ToLower(tag)]++
}

// Add folds other into s. Used to aggregate per-entry stats over a database.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.InputBytes += other.InputBytes
	s.OutputBytes += other.OutputBytes
	s.CommentsRemoved += other.CommentsRemoved
	s.AttributesRemoved += other.AttributesRemoved
	s.StylesDropped += other.StylesDropped
	for tag, count := range other.ElementsDropped {
		s.ElementsDropped[tag] += count
	}
	for tag, count := range other.ElementsUnwrapped {
		s.ElementsUnwrapped[tag] += count
	}
	s.ParseDuration += other.ParseDuration
	s.TransformDuration += other.TransformDuration
	s.OutputDuration += other.OutputDuration
	s.TotalDuration += other.TotalDuration
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))

	if s.CommentsRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Comments removed: %d\n", s.CommentsRemoved))
	}

	if len(s.ElementsDropped) > 0 {
		sb.WriteString(fmt.Sprintf("Dropped: %s\n", formatTagCounts(s.ElementsDropped)))
	}

	if len(s.ElementsUnwrapped) > 0 {
		sb.WriteString(fmt.Sprintf("Unwrapped: %d (%s)\n", s.TotalUnwrapped(), formatTagCounts(s.ElementsUnwrapped)))
	}

	if s.AttributesRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attributes removed: %d\n", s.AttributesRemoved))
	}

	if s.StylesDropped > 0 {
		sb.WriteString(fmt.Sprintf("Style declarations dropped: %d\n", s.StylesDropped))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// formatTagCounts renders tag counts sorted by tag name.
func formatTagCounts(counts map[string]int) string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("%s=%d", tag, counts[tag]))
	}
	return strings.Join(parts, ", ")
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned fragment.
	Content string `json:"content"`

	// Flavor is the flavor detected on the input.
	Flavor Flavor `json:"flavor"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`
}
