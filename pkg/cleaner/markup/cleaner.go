package markup

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cleaner normalizes keyword definition fragments.
// It implements the cleaner.Cleaner interface.
type Cleaner struct {
	configs    map[Flavor]*Config
	disallowed map[Flavor]cascadia.Selector
}

// New creates a Cleaner that uses WordConfig for Word fragments and
// StandardConfig for everything else.
func New() *Cleaner {
	c, err := newWithConfigs(WordConfig(), StandardConfig())
	if err != nil {
		// The presets only hold plain tag names.
		panic(err)
	}
	return c
}

func newWithConfigs(word, standard *Config) (*Cleaner, error) {
	c := &Cleaner{
		configs: map[Flavor]*Config{
			FlavorWord:     word,
			FlavorStandard: standard,
		},
		disallowed: make(map[Flavor]cascadia.Selector),
	}
	for flavor, cfg := range c.configs {
		if !cfg.UnwrapDisallowed {
			continue
		}
		sel, err := compileDisallowed(cfg.AllowedTags)
		if err != nil {
			return nil, fmt.Errorf("compiling allow-list for %s markup: %w", flavor, err)
		}
		c.disallowed[flavor] = sel
	}
	return c, nil
}

// compileDisallowed builds a selector matching every element outside tags.
func compileDisallowed(tags []string) (cascadia.Selector, error) {
	if len(tags) == 0 {
		return cascadia.Compile("*")
	}
	return cascadia.Compile(":not(" + strings.Join(tags, ", ") + ")")
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "markup"
}

// Clean normalizes a fragment according to its detected flavor.
func (c *Cleaner) Clean(markup string) (string, error) {
	result, err := c.CleanWithStats(markup)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// CleanWithStats performs cleaning and returns detailed stats.
func (c *Cleaner) CleanWithStats(markup string) (*Result, error) {
	startTime := time.Now()
	flavor := Detect(markup)
	result := &Result{
		Flavor: flavor,
		Stats:  NewStats(),
	}
	result.Stats.InputBytes = len(markup)

	parseStart := time.Now()
	doc, err := parseFragment(markup)
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("parsing %s markup: %w", flavor, err)
	}

	transformStart := time.Now()
	err = c.transform(doc, flavor, result.Stats)
	result.Stats.TransformDuration = time.Since(transformStart)
	if err != nil {
		return nil, fmt.Errorf("transforming %s markup: %w", flavor, err)
	}

	outputStart := time.Now()
	output := renderFragment(doc.Nodes[0])
	result.Stats.OutputDuration = time.Since(outputStart)

	result.Content = output
	result.Stats.OutputBytes = len(output)
	result.Stats.TotalDuration = time.Since(startTime)
	return result, nil
}

// parseFragment parses markup as the contents of a <body> element, so no
// html/head/body wrapper is added and none survives in the output.
func parseFragment(markup string) (*goquery.Document, error) {
	nodes, err := parseNodes(markup)
	if err != nil {
		return nil, err
	}
	root := bodyNode()
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// parseNodes parses markup in a <body> context and returns the top-level nodes.
func parseNodes(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), bodyNode())
}

func bodyNode() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	}
}

// transform applies the passes configured for flavor.
func (c *Cleaner) transform(doc *goquery.Document, flavor Flavor, stats *Stats) error {
	cfg := c.configs[flavor]

	// Order matters: fallback text becomes nodes before anything else sees
	// it, comments go before the unwrap pass, attributes last.
	if cfg.UnwrapDisallowed {
		if err := expandFallbacks(doc.Nodes[0]); err != nil {
			return err
		}
	}
	if cfg.StripComments {
		removeComments(doc.Nodes[0], stats)
	}
	if len(cfg.DropElements) > 0 {
		dropElements(doc, cfg.DropElements, stats)
	}
	if cfg.UnwrapDisallowed {
		c.unwrapDisallowed(doc, flavor, stats)
	}
	if cfg.StripClasses {
		removeAttribute(doc, "class", stats)
	}
	if cfg.StripIDs {
		removeAttribute(doc, "id", stats)
	}
	if cfg.StripMsoStyles {
		removeMsoStyles(doc, stats)
	}
	return nil
}

// unwrapDisallowed replaces every element outside the allow-list with its
// children. Nodes come back in document order, so ancestors are unwrapped
// before their descendants and the moved children keep valid parents.
func (c *Cleaner) unwrapDisallowed(doc *goquery.Document, flavor Flavor, stats *Stats) {
	sel, ok := c.disallowed[flavor]
	if !ok {
		return
	}
	for _, n := range doc.FindMatcher(sel).Nodes {
		if n.Type != html.ElementNode || n.Parent == nil {
			continue
		}
		stats.RecordUnwrap(n.Data)
		unwrapNode(n)
	}
}

// dropElements removes the named elements and everything inside them.
func dropElements(doc *goquery.Document, tags []string, stats *Stats) {
	doc.Find(strings.Join(tags, ", ")).Each(func(_ int, s *goquery.Selection) {
		stats.RecordDrop(goquery.NodeName(s))
		s.Remove()
	})
}

// removeAttribute deletes attr from every element carrying it.
func removeAttribute(doc *goquery.Document, attr string, stats *Stats) {
	doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr(attr)
		stats.AttributesRemoved++
	})
}

// removeMsoStyles drops Word's mso-* declarations from style attributes.
// An attribute left with no declarations is removed.
func removeMsoStyles(doc *goquery.Document, stats *Stats) {
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		filtered, dropped := filterMsoDeclarations(style)
		if dropped == 0 {
			return
		}
		stats.StylesDropped += dropped
		if isBlankStyle(filtered) {
			s.RemoveAttr("style")
			stats.AttributesRemoved++
			return
		}
		s.SetAttr("style", filtered)
	})
}

func isBlankStyle(style string) bool {
	return strings.Trim(style, " \t\r\n\f;") == ""
}
