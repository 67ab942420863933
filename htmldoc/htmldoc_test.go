package htmldoc

import (
	"strings"
	"testing"

	"github.com/folioapp/folio/model"
)

func TestRender_TagMapping(t *testing.T) {
	tests := []struct {
		name string
		node *model.Node
		want string
	}{
		{
			"heading level 3",
			model.NewHeading(3, "Section"),
			"<h3>Section</h3>",
		},
		{
			"title",
			&model.Node{Type: model.NodeTitle, Content: []*model.Node{model.NewText("My Page")}},
			`<h1 class="page-title">My Page</h1>`,
		},
		{
			"paragraph",
			model.NewParagraph("Body text"),
			"<p>Body text</p>",
		},
		{
			"blockquote",
			&model.Node{Type: model.NodeBlockquote, Content: []*model.Node{model.NewParagraph("quoted")}},
			"<blockquote><p>quoted</p></blockquote>",
		},
		{
			"ordered list with start",
			&model.Node{
				Type:  model.NodeOrderedList,
				Attrs: &model.NodeAttrs{Start: 4},
				Content: []*model.Node{
					{Type: model.NodeListItem, Content: []*model.Node{model.NewParagraph("four")}},
				},
			},
			`<ol start="4"><li><p>four</p></li></ol>`,
		},
		{
			"code block with language",
			&model.Node{
				Type:    model.NodeCodeBlock,
				Attrs:   &model.NodeAttrs{Language: "go"},
				Content: []*model.Node{model.NewText("a < b")},
			},
			`<pre><code class="language-go">a &lt; b</code></pre>`,
		},
		{
			"image self-closing",
			&model.Node{Type: model.NodeImage, Attrs: &model.NodeAttrs{Src: "https://x.test/a.png", Alt: "pic"}},
			`<img src="https://x.test/a.png" alt="pic" />`,
		},
		{
			"table",
			&model.Node{Type: model.NodeTable, Content: []*model.Node{
				{Type: model.NodeTableRow, Content: []*model.Node{
					{Type: model.NodeTableHeader, Content: []*model.Node{model.NewText("H")}},
					{Type: model.NodeTableCell, Content: []*model.Node{model.NewText("C")}},
				}},
			}},
			"<table><tr><th>H</th><td>C</td></tr></table>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &model.Document{Type: "doc", Content: []*model.Node{tt.node}}
			if got := Render(d); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_Marks(t *testing.T) {
	d := &model.Document{Type: "doc", Content: []*model.Node{
		{Type: model.NodeParagraph, Content: []*model.Node{
			model.NewText("bold italic",
				model.Mark{Type: model.MarkBold},
				model.Mark{Type: model.MarkItalic},
			),
			model.NewText("go here", model.Mark{
				Type:  model.MarkLink,
				Attrs: &model.MarkAttrs{Href: "https://example.com?a=1&b=2"},
			}),
		}},
	}}

	want := `<p><strong><em>bold italic</em></strong>` +
		`<a href="https://example.com?a=1&amp;b=2">go here</a></p>`
	if got := Render(d); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_EscapesText(t *testing.T) {
	d := &model.Document{Type: "doc", Content: []*model.Node{
		model.NewParagraph(`a < b & "c"`),
	}}
	got := Render(d)
	if strings.Contains(got, "a < b") {
		t.Errorf("text not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;") || !strings.Contains(got, "&amp;") {
		t.Errorf("expected entity escapes, got %q", got)
	}
}

func TestRender_Totality(t *testing.T) {
	tests := []struct {
		name string
		doc  *model.Document
		want string
	}{
		{"nil document", nil, ""},
		{"nil content", &model.Document{Type: "doc"}, ""},
		{"nil node in content", &model.Document{Type: "doc", Content: []*model.Node{nil}}, ""},
		{
			"unknown node type renders children",
			&model.Document{Type: "doc", Content: []*model.Node{
				{Type: "callout", Content: []*model.Node{model.NewParagraph("kept")}},
			}},
			"<p>kept</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.doc); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	d := &model.Document{Type: "doc", Content: []*model.Node{
		model.NewHeading(2, "Title"),
		model.NewParagraph("Body"),
		{Type: model.NodeOrderedList, Attrs: &model.NodeAttrs{Start: 2}, Content: []*model.Node{
			{Type: model.NodeListItem, Content: []*model.Node{model.NewParagraph("item")}},
		}},
	}}

	first := Render(d)
	second := Render(d)
	if first != second {
		t.Errorf("Render not deterministic:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	tests := []string{"", "   ", "\n\t"}
	for _, input := range tests {
		if got := Parse(input); got != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, got)
		}
	}
}

func TestParse_UnparseableYieldsValidDocument(t *testing.T) {
	d := Parse("<<<%%% not html at all")
	if d == nil {
		t.Fatal("Parse returned nil for non-empty input")
	}
	if d.Type != "doc" {
		t.Errorf("Type = %q, want doc", d.Type)
	}
	if d.Content == nil {
		t.Error("Content should be non-nil (empty document, not absent)")
	}
}

func TestParse_Structure(t *testing.T) {
	src := `<h2>Chapter</h2>
<p>Intro with <strong>bold</strong> and <a href="https://x.test">a link</a>.</p>
<ol start="3"><li>first</li><li>second</li></ol>
<pre><code class="language-python">print("hi")</code></pre>
<img src="https://x.test/i.png" alt="pic">`

	d := Parse(src)
	if d == nil {
		t.Fatal("Parse returned nil")
	}
	if len(d.Content) != 5 {
		t.Fatalf("got %d blocks, want 5: %+v", len(d.Content), d.Content)
	}

	h := d.Content[0]
	if h.Type != model.NodeHeading || h.Level() != 2 || h.PlainText() != "Chapter" {
		t.Errorf("heading = %+v", h)
	}

	p := d.Content[1]
	if p.Type != model.NodeParagraph {
		t.Fatalf("block 1 type = %v", p.Type)
	}
	foundBold, foundLink := false, false
	model.Walk(p, func(n *model.Node) bool {
		if n.HasMark(model.MarkBold) && n.Text == "bold" {
			foundBold = true
		}
		if n.HasMark(model.MarkLink) {
			foundLink = true
		}
		return true
	})
	if !foundBold || !foundLink {
		t.Errorf("marks lost: bold=%v link=%v", foundBold, foundLink)
	}

	list := d.Content[2]
	if list.Type != model.NodeOrderedList {
		t.Fatalf("block 2 type = %v", list.Type)
	}
	if list.Attrs == nil || list.Attrs.Start != 3 {
		t.Errorf("start attribute lost: %+v", list.Attrs)
	}
	if len(list.Content) != 2 {
		t.Errorf("got %d list items, want 2", len(list.Content))
	}

	code := d.Content[3]
	if code.Type != model.NodeCodeBlock {
		t.Fatalf("block 3 type = %v", code.Type)
	}
	if code.Attrs == nil || code.Attrs.Language != "python" {
		t.Errorf("language lost: %+v", code.Attrs)
	}
	if code.PlainText() != `print("hi")` {
		t.Errorf("code text = %q", code.PlainText())
	}

	img := d.Content[4]
	if img.Type != model.NodeImage || img.Attrs == nil || img.Attrs.Src != "https://x.test/i.png" {
		t.Errorf("image = %+v", img)
	}
}

func TestParse_DropsScriptAndStyle(t *testing.T) {
	d := Parse(`<p>keep</p><script>alert(1)</script><style>p{}</style>`)
	if got := d.PlainText(); got != "keep" {
		t.Errorf("PlainText() = %q, want %q", got, "keep")
	}
}

func TestDisplayContent(t *testing.T) {
	doc := &model.Document{Type: "doc", Content: []*model.Node{model.NewParagraph("From doc")}}

	tests := []struct {
		name   string
		doc    *model.Document
		legacy string
		want   string
	}{
		{"document preferred", doc, "<p>Fallback</p>", "<p>From doc</p>"},
		{"nil document falls back", nil, "<p>Fallback</p>", "<p>Fallback</p>"},
		{
			"empty document falls back",
			&model.Document{Type: "doc", Content: []*model.Node{}},
			"<p>Fallback</p>",
			"<p>Fallback</p>",
		},
		{"both empty", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayContent(tt.doc, tt.legacy); got != tt.want {
				t.Errorf("DisplayContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
