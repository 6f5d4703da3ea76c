package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  []string
	}{
		{"empty", "", []string{""}},
		{"single", "color:red", []string{"color:red"}},
		{"trailing semicolon", "color:red;", []string{"color:red", ""}},
		{"keeps whitespace", "a:1; b:2", []string{"a:1", " b:2"}},
		{"quoted semicolon", `font-family:"a;b";color:red`, []string{`font-family:"a;b"`, "color:red"}},
		{"url semicolon", "background:url(a;b.png);mso-x:1", []string{"background:url(a;b.png)", "mso-x:1"}},
		{"function arguments", "color:rgb(1,2,3);margin:0", []string{"color:rgb(1,2,3)", "margin:0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitDeclarations(tt.style)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("splitDeclarations() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterMsoDeclarations(t *testing.T) {
	tests := []struct {
		name        string
		style       string
		want        string
		wantDropped int
	}{
		{"no mso", "color:red;margin:0", "color:red;margin:0", 0},
		{"leading mso", "mso-fareast-font-family:Calibri;color:red", "color:red", 1},
		{"trailing mso keeps separator", "color:red;mso-ansi-language:EN-US;", "color:red;", 1},
		{"only mso", "mso-a:1;mso-b:2", "", 2},
		{"case insensitive", "MSO-A:1;color:red", "color:red", 1},
		{"spaced property", "color:red; mso-a:1", "color:red", 1},
		{"quoted mso value is not a property", `font-family:"mso;x"`, `font-family:"mso;x"`, 0},
		{"comment before property", "/* c;d */ mso-x:1;color:red", "color:red", 1},
		{"mso inside comment only", "/* mso */color:red", "/* mso */color:red", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := filterMsoDeclarations(tt.style)
			if got != tt.want {
				t.Errorf("filterMsoDeclarations() = %q, want %q", got, tt.want)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
		})
	}
}

func TestIsBlankStyle(t *testing.T) {
	for _, s := range []string{"", " ", ";", " ; ;"} {
		if !isBlankStyle(s) {
			t.Errorf("isBlankStyle(%q) = false, want true", s)
		}
	}
	if isBlankStyle("color:red") {
		t.Error("isBlankStyle(\"color:red\") = true, want false")
	}
}

func TestRenderFragment(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"text escapes", `a &lt; b &amp; "c" 'd'`, `a &lt; b &amp; "c" 'd'`},
		{"attribute escapes", `<a title="x &amp; &quot;y&quot; 'z'">t</a>`, `<a title="x &amp; &quot;y&quot; 'z'">t</a>`},
		{"comment", `<!-- c -->`, `<!-- c -->`},
		{"style raw text", `<style>a > b { content: "&" }</style>`, `<style>a > b { content: "&" }</style>`},
		{"pre leading newline", "<pre>\n\nx</pre>", "<pre>\n\nx</pre>"},
		{"namespaced tag", `<o:p></o:p>`, `<o:p></o:p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parseFragment(tt.html)
			if err != nil {
				t.Fatalf("parseFragment() error = %v", err)
			}
			if got := renderFragment(doc.Nodes[0]); got != tt.want {
				t.Errorf("renderFragment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandFallbacks(t *testing.T) {
	doc, err := parseFragment(`<div><noscript><i>a</i><noscript><b>b</b></noscript></noscript></div>`)
	if err != nil {
		t.Fatalf("parseFragment() error = %v", err)
	}
	if err := expandFallbacks(doc.Nodes[0]); err != nil {
		t.Fatalf("expandFallbacks() error = %v", err)
	}
	if n := doc.Find("noscript i").Length(); n != 1 {
		t.Errorf("expected <i> inside <noscript> after expansion, found %d", n)
	}
}
