// Package markup cleans HTML/XML fragments stored in keyword definitions.
// It detects whether a fragment was pasted from Microsoft Word and, based
// on that, strips presentation metadata or collapses the tag set down to a
// small allow-list.
package markup

import "strings"

// Flavor identifies where a fragment came from.
type Flavor string

const (
	FlavorStandard Flavor = "standard"
	FlavorWord     Flavor = "word"
)

// wordMarker only appears in the Office XML block Word embeds in pasted HTML.
const wordMarker = "OfficeDocumentSettings"

// AllowedTags are the only elements kept in Word-generated markup.
var AllowedTags = []string{"span", "div", "p"}

// Detect reports the flavor of a raw markup fragment.
func Detect(markup string) Flavor {
	if strings.Contains(markup, wordMarker) {
		return FlavorWord
	}
	return FlavorStandard
}

// Config selects the passes run over a fragment.
type Config struct {
	// StripComments removes every comment node, including conditional comments.
	StripComments bool `json:"strip_comments" yaml:"strip_comments"`

	// DropElements removes these elements together with their contents.
	// Used for blocks that carry only metadata (stylesheets, Office XML).
	DropElements []string `json:"drop_elements,omitempty" yaml:"drop_elements,omitempty"`

	// UnwrapDisallowed replaces elements not in AllowedTags with their children.
	UnwrapDisallowed bool `json:"unwrap_disallowed" yaml:"unwrap_disallowed"`

	// AllowedTags lists the element names kept when UnwrapDisallowed is set.
	AllowedTags []string `json:"allowed_tags,omitempty" yaml:"allowed_tags,omitempty"`

	// StripClasses removes class="" attributes.
	StripClasses bool `json:"strip_classes" yaml:"strip_classes"`

	// StripIDs removes id="" attributes.
	StripIDs bool `json:"strip_ids" yaml:"strip_ids"`

	// StripMsoStyles drops mso-* declarations from style="" attributes.
	StripMsoStyles bool `json:"strip_mso_styles" yaml:"strip_mso_styles"`
}

// WordConfig is used for fragments pasted from Word.
func WordConfig() *Config {
	return &Config{
		StripComments:    true,
		DropElements:     []string{"style", "script", "xml"},
		UnwrapDisallowed: true,
		AllowedTags:      append([]string(nil), AllowedTags...),
		StripClasses:     true,
		StripIDs:         true,
	}
}

// StandardConfig is used for every other fragment.
func StandardConfig() *Config {
	return &Config{
		StripClasses:   true,
		StripIDs:       true,
		StripMsoStyles: true,
	}
}

// ConfigFor returns the preset for a flavor.
func ConfigFor(f Flavor) *Config {
	if f == FlavorWord {
		return WordConfig()
	}
	return StandardConfig()
}
