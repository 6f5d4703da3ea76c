package markup

import (
	"strings"

	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rawTextElements hold text the parser never unescaped.
var rawTextElements = map[atom.Atom]bool{
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Noscript:  true,
	atom.Plaintext: true,
	atom.Script:    true,
	atom.Style:     true,
	atom.Xmp:       true,
}

// fallbackElements are raw text elements whose text is markup shown when the
// element itself is unsupported.
var fallbackElements = map[atom.Atom]bool{
	atom.Iframe:   true,
	atom.Noembed:  true,
	atom.Noframes: true,
	atom.Noscript: true,
}

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// renderFragment serializes the children of root. Text only escapes &, <
// and >, attribute values only & and ", so quotes and apostrophes in
// definitions come back as they were written.
func renderFragment(root *html.Node) string {
	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&sb, c)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if isRawText(n.Parent) {
			sb.WriteString(n.Data)
			return
		}
		_, _ = textEscaper.WriteString(sb, n.Data)
	case html.CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")
	case html.DoctypeNode:
		sb.WriteString("<!DOCTYPE ")
		sb.WriteString(n.Data)
		sb.WriteByte('>')
	case html.ElementNode:
		renderElement(sb, n)
	}
}

func renderElement(sb *strings.Builder, n *html.Node) {
	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteByte(' ')
		if a.Namespace != "" {
			sb.WriteString(a.Namespace)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		_, _ = attrEscaper.WriteString(sb, a.Val)
		sb.WriteByte('"')
	}
	if voidElements[n.Data] {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')

	// The parser drops a newline directly after these start tags.
	switch n.Data {
	case "pre", "listing", "textarea":
		if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
			sb.WriteByte('\n')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Data)
	sb.WriteByte('>')
}

func isRawText(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.Namespace == "" && rawTextElements[n.DataAtom]
}

// expandFallbacks re-parses the text of fallback elements below root as
// markup, so unwrapping them keeps their text instead of escaped tags.
func expandFallbacks(root *html.Node) error {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Namespace == "" && fallbackElements[c.DataAtom] {
			if err := reparseText(c); err != nil {
				return err
			}
		}
		if err := expandFallbacks(c); err != nil {
			return err
		}
	}
	return nil
}

// reparseText replaces the text children of n with the nodes they describe.
func reparseText(n *html.Node) error {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return nil
		}
		sb.WriteString(c.Data)
	}
	if sb.Len() == 0 {
		return nil
	}

	nodes, err := parseNodes(sb.String())
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// removeComments deletes every comment node below root.
// goquery selections only hold elements, so this walks the raw node tree.
func removeComments(root *html.Node, stats *Stats) {
	var next *html.Node
	for c := root.FirstChild; c != nil; c = next {
		next = c.NextSibling
		switch c.Type {
		case html.CommentNode:
			root.RemoveChild(c)
			stats.CommentsRemoved++
		case html.ElementNode:
			removeComments(c, stats)
		}
	}
}

// unwrapNode moves the children of n in front of n, then detaches n.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// filterMsoDeclarations drops declarations whose property starts with "mso"
// from an inline style and returns the rest joined as they were written,
// along with the number of declarations dropped.
func filterMsoDeclarations(style string) (string, int) {
	decls := splitDeclarations(style)
	kept := decls[:0]
	dropped := 0
	for _, d := range decls {
		if strings.HasPrefix(strings.ToLower(declarationProperty(d)), "mso") {
			dropped++
			continue
		}
		kept = append(kept, d)
	}
	return strings.Join(kept, ";"), dropped
}

// splitDeclarations splits an inline style on top-level semicolons. Quoted
// strings, url(...) and function arguments are kept intact.
func splitDeclarations(style string) []string {
	var (
		decls []string
		cur   strings.Builder
		depth int
	)
	s := scanner.New(style)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return append(decls, cur.String())
		case scanner.TokenError:
			return strings.Split(style, ";")
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			switch tok.Value {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ";":
				if depth == 0 {
					decls = append(decls, cur.String())
					cur.Reset()
					continue
				}
			}
		}
		cur.WriteString(tok.Value)
	}
}

// declarationProperty returns the first token of decl that is neither
// whitespace nor a comment.
func declarationProperty(decl string) string {
	s := scanner.New(decl)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenS, scanner.TokenComment:
			continue
		case scanner.TokenEOF:
			return ""
		case scanner.TokenError:
			return strings.TrimSpace(decl)
		}
		return tok.Value
	}
}
