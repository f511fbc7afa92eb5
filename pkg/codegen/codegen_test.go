package codegen

import (
	"strings"
	"testing"

	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/props"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func node(tag string, children ...*export.Node) *export.Node {
	return &export.Node{Tag: tag, Attributes: &props.Map{}, Styles: &props.Map{}, Children: children}
}

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hero Section", "hero-section"},
		{"Hero Section!", "hero-section"},
		{"  --Primary   Button--  ", "primary-button"},
		{"a - b", "a-b"},
		{"Card_Title/2", "cardtitle2"},
		{"Ünïcode Name", "ncode-name"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SanitizeClassName(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeClassName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := SanitizeClassName(got); again != got {
				t.Errorf("SanitizeClassName not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"width", "width"},
		{"backgroundColor", "background-color"},
		{"borderTopLeftRadius", "border-top-left-radius"},
		{"webkitBackgroundClip", "-webkit-background-clip"},
		{"webkitTextFillColor", "-webkit-text-fill-color"},
		{"mozAppearance", "-moz-appearance"},
		{"msFlex", "-ms-flex"},
		{"h1Size", "h1-size"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := KebabCase(tt.in); got != tt.want {
				t.Errorf("KebabCase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateHTMLBodies(t *testing.T) {
	long := strings.Repeat("Lorem ipsum ", 5) // 60 characters, trimmed to 59
	withAttrs := node("a")
	withAttrs.Content = "Docs"
	withAttrs.Attributes = props.New("className", "link primary", "href", "/docs?a=1&b=2", "title", "")

	tests := []struct {
		name  string
		nodes []*export.Node
		want  string
	}{
		{
			name:  "short content on one line",
			nodes: []*export.Node{{Tag: "button", Content: "Play"}},
			want:  "<button>Play</button>",
		},
		{
			name:  "long content on its own line",
			nodes: []*export.Node{{Tag: "p", Content: long}},
			want:  "<p>\n  " + strings.TrimSpace(long) + "\n</p>",
		},
		{
			name:  "content and children use a three-part body",
			nodes: []*export.Node{{Tag: "div", Content: long, Children: []*export.Node{{Tag: "span", Content: "x"}}}},
			want:  "<div>\n  " + strings.TrimSpace(long) + "\n  <span>x</span>\n</div>",
		},
		{
			name:  "short content and children",
			nodes: []*export.Node{{Tag: "label", Content: "Name", Children: []*export.Node{{Tag: "input"}}}},
			want:  "<label>\n  Name\n  <input />\n</label>",
		},
		{
			name:  "nested children",
			nodes: []*export.Node{node("ul", node("li", node("span")), node("li"))},
			want:  "<ul>\n  <li>\n    <span></span>\n  </li>\n  <li></li>\n</ul>",
		},
		{
			name:  "whitespace-only content is empty",
			nodes: []*export.Node{{Tag: "div", Content: "   "}},
			want:  "<div></div>",
		},
		{
			name:  "roots joined by newlines",
			nodes: []*export.Node{node("header"), node("footer")},
			want:  "<header></header>\n<footer></footer>",
		},
		{
			name:  "attributes",
			nodes: []*export.Node{withAttrs},
			want:  `<a class="link primary" href="/docs?a=1&amp;b=2">Docs</a>`,
		},
		{
			name: "image gets its source",
			nodes: []*export.Node{
				{Tag: "img", Source: "https://cdn.example.com/a.png", Attributes: props.New("alt", "Logo")},
				{Tag: "img", Source: "ignored", Attributes: props.New("src", "own.png")},
			},
			want: "<img alt=\"Logo\" src=\"https://cdn.example.com/a.png\" />\n<img src=\"own.png\" />",
		},
		{
			name:  "content is escaped",
			nodes: []*export.Node{{Tag: "code", Content: "a < b && c"}},
			want:  "<code>a &lt; b &amp;&amp; c</code>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateHTML(tt.nodes); got != tt.want {
				t.Errorf("GenerateHTML() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestClassNames(t *testing.T) {
	tests := []struct {
		name     string
		attrs    *props.Map
		wantHTML string
		wantCSS  string
	}{
		{
			name:     "className and class merge",
			attrs:    props.New("className", "a", "id", "x", "class", "b a"),
			wantHTML: `<div class="a b" id="x"></div>`,
			wantCSS:  ".a.b {\n  color: red;\n}",
		},
		{
			name:     "class alone",
			attrs:    props.New("class", "card__title is-active"),
			wantHTML: `<div class="card__title is-active"></div>`,
			wantCSS:  ".card__title.is-active {\n  color: red;\n}",
		},
		{
			name:     "invalid names are sanitized",
			attrs:    props.New("className", "a{color:red} 9lives ok"),
			wantHTML: `<div class="acolorred ok"></div>`,
			wantCSS:  ".acolorred.ok {\n  color: red;\n}",
		},
		{
			name:     "nothing usable falls back to the element name",
			attrs:    props.New("className", "{}", "class", "   "),
			wantHTML: `<div></div>`,
			wantCSS:  ".box {\n  color: red;\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := styled("div", "Box", props.New("color", "red"))
			n.Attributes = tt.attrs
			nodes := []*export.Node{n}

			if got := GenerateHTML(nodes); got != tt.wantHTML {
				t.Errorf("GenerateHTML() = %s, want %s", got, tt.wantHTML)
			}
			if got := GenerateCSS(nodes); got != tt.wantCSS {
				t.Errorf("GenerateCSS() =\n%s\nwant\n%s", got, tt.wantCSS)
			}
		})
	}
}

func TestAttributeEscapeRoundTrip(t *testing.T) {
	values := []string{`plain`, `a<b`, `x > y`, `fish & chips`, `say "hi"`, `it's <&"'>`}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			n := node("div")
			n.Attributes.Set("data-value", v)

			body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
			parsed, err := html.ParseFragment(strings.NewReader(GenerateHTML([]*export.Node{n})), body)
			if err != nil {
				t.Fatalf("ParseFragment() error = %v", err)
			}
			if len(parsed) != 1 || len(parsed[0].Attr) != 1 {
				t.Fatalf("ParseFragment() = %d nodes, want one div with one attribute", len(parsed))
			}
			if got := parsed[0].Attr[0].Val; got != v {
				t.Errorf("attribute = %q, want %q", got, v)
			}
		})
	}
}

func styled(tag, name string, styles *props.Map, children ...*export.Node) *export.Node {
	n := node(tag, children...)
	n.ElementName = name
	n.Styles = styles
	return n
}

func TestGenerateCSS(t *testing.T) {
	card := func() *export.Node {
		return styled("div", "Card", props.New("width", "100px", "backgroundColor", "#FFFFFF"))
	}
	explicit := styled("a", "Ignored Name", props.New("color", "red"))
	explicit.Attributes.Set("className", "btn  btn-primary")

	nodes := []*export.Node{
		styled("section", "Hero Section", props.New("display", "flex", "webkitBackgroundClip", "text"),
			card(),
			card(),
			styled("div", "Card", props.New("width", "200px")),
			explicit,
			styled("span", "!!!", props.New("fontSize", "12px")),
			styled("p", "Empty", &props.Map{}),
			styled("i", "Blank", props.New("color", "")),
		),
	}

	want := strings.Join([]string{
		".hero-section {\n  display: flex;\n  -webkit-background-clip: text;\n}",
		".card {\n  width: 100px;\n  background-color: #FFFFFF;\n}",
		".card {\n  width: 200px;\n}",
		".btn.btn-primary {\n  color: red;\n}",
		"span {\n  font-size: 12px;\n}",
	}, "\n\n")
	if got := GenerateCSS(nodes); got != want {
		t.Errorf("GenerateCSS() =\n%s\nwant\n%s", got, want)
	}

	wantMerged := strings.Join([]string{
		".hero-section {\n  display: flex;\n  -webkit-background-clip: text;\n}",
		".card {\n  width: 200px;\n  background-color: #FFFFFF;\n}",
		".btn.btn-primary {\n  color: red;\n}",
		"span {\n  font-size: 12px;\n}",
	}, "\n\n")
	if got := (Generator{Dedup: DedupSelector}).CSS(nodes); got != wantMerged {
		t.Errorf("CSS(selector) =\n%s\nwant\n%s", got, wantMerged)
	}
}

func TestGenerateCSSExactDuplicatesCollapse(t *testing.T) {
	a := styled("div", "Tile", props.New("width", "10px"))
	b := styled("div", "Tile", props.New("width", "10px"))
	got := GenerateCSS([]*export.Node{a, b})
	if n := strings.Count(got, ".tile {"); n != 1 {
		t.Errorf("GenerateCSS() has %d .tile rules, want 1:\n%s", n, got)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	nodes := []*export.Node{styled("div", "A", props.New("width", "1px", "height", "2px"), styled("span", "B", props.New("color", "red")))}
	if GenerateHTML(nodes) != GenerateHTML(nodes) || GenerateCSS(nodes) != GenerateCSS(nodes) {
		t.Error("generation is not deterministic")
	}
}

func TestVerify(t *testing.T) {
	nodes := []*export.Node{
		styled("section", "Hero", props.New("display", "flex"),
			styled("h1", "Title", props.New("fontSize", "32px")),
			styled("p", "Title", props.New("fontSize", "16px")),
		),
	}
	nodes[0].Children[0].Content = "Welcome"

	report, err := Verify(GenerateHTML(nodes), GenerateCSS(nodes))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if report.Elements != 3 {
		t.Errorf("Verify() elements = %d, want 3", report.Elements)
	}
	if report.Rules != 3 || report.Declarations != 3 {
		t.Errorf("Verify() rules = %d, declarations = %d, want 3 and 3", report.Rules, report.Declarations)
	}
	if len(report.DuplicateSelectors) != 1 || report.DuplicateSelectors[0] != ".title" {
		t.Errorf("Verify() duplicates = %v, want [.title]", report.DuplicateSelectors)
	}
}
