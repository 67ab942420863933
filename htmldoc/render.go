package htmldoc

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/folioapp/folio/model"
)

// Render serializes a document to HTML. The output is deterministic: two
// calls on the same unmutated document return byte-equal strings, which call
// sites rely on for memoization. A nil document renders to "". Malformed
// trees never panic; if rendering fails internally the result is "" and a
// warning is logged.
func Render(d *model.Document) (out string) {
	if d == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("document render failed", "error", r)
			out = ""
		}
	}()

	var sb strings.Builder
	for _, n := range d.Content {
		renderNode(&sb, n)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *model.Node) {
	if n == nil {
		return
	}

	switch n.Type {
	case model.NodeText:
		renderText(sb, n)

	case model.NodeTitle:
		wrap(sb, n, `<h1 class="page-title">`, "</h1>")

	case model.NodeHeading:
		tag := "h" + strconv.Itoa(n.Level())
		wrap(sb, n, "<"+tag+">", "</"+tag+">")

	case model.NodeParagraph:
		wrap(sb, n, "<p>", "</p>")

	case model.NodeBlockquote:
		wrap(sb, n, "<blockquote>", "</blockquote>")

	case model.NodeBulletList:
		wrap(sb, n, "<ul>", "</ul>")

	case model.NodeOrderedList:
		open := "<ol>"
		if n.Attrs != nil && n.Attrs.Start > 1 {
			open = `<ol start="` + strconv.Itoa(n.Attrs.Start) + `">`
		}
		wrap(sb, n, open, "</ol>")

	case model.NodeListItem:
		wrap(sb, n, "<li>", "</li>")

	case model.NodeCodeBlock:
		lang := ""
		if n.Attrs != nil {
			lang = n.Attrs.Language
		}
		if lang != "" {
			fmt.Fprintf(sb, `<pre><code class="language-%s">`, html.EscapeString(lang))
		} else {
			sb.WriteString("<pre><code>")
		}
		sb.WriteString(html.EscapeString(n.PlainText()))
		sb.WriteString("</code></pre>")

	case model.NodeImage:
		src, alt := "", ""
		if n.Attrs != nil {
			src = n.Attrs.Src
			alt = n.Attrs.Alt
		}
		fmt.Fprintf(sb, `<img src="%s" alt="%s" />`,
			html.EscapeString(src), html.EscapeString(alt))

	case model.NodeTable:
		wrap(sb, n, "<table>", "</table>")

	case model.NodeTableRow:
		wrap(sb, n, "<tr>", "</tr>")

	case model.NodeTableCell:
		wrap(sb, n, "<td>", "</td>")

	case model.NodeTableHeader:
		wrap(sb, n, "<th>", "</th>")

	default:
		// Foreign node type: render its children so no text is lost.
		for _, c := range n.Content {
			renderNode(sb, c)
		}
	}
}

func wrap(sb *strings.Builder, n *model.Node, open, close string) {
	sb.WriteString(open)
	for _, c := range n.Content {
		renderNode(sb, c)
	}
	sb.WriteString(close)
}

// renderText writes a text leaf wrapped by its marks. Marks open in the
// order they appear on the node and close in reverse, so stacked marks nest.
func renderText(sb *strings.Builder, n *model.Node) {
	for _, m := range n.Marks {
		switch m.Type {
		case model.MarkBold:
			sb.WriteString("<strong>")
		case model.MarkItalic:
			sb.WriteString("<em>")
		case model.MarkCode:
			sb.WriteString("<code>")
		case model.MarkLink:
			sb.WriteString(`<a href="` + html.EscapeString(m.Href()) + `">`)
		}
	}

	sb.WriteString(html.EscapeString(n.Text))

	for i := len(n.Marks) - 1; i >= 0; i-- {
		switch n.Marks[i].Type {
		case model.MarkBold:
			sb.WriteString("</strong>")
		case model.MarkItalic:
			sb.WriteString("</em>")
		case model.MarkCode:
			sb.WriteString("</code>")
		case model.MarkLink:
			sb.WriteString("</a>")
		}
	}
}

// DisplayContent returns the HTML to show for a page. The document is
// preferred whenever it is non-nil and structurally non-empty; the legacy
// HTML string is the fallback for older records.
func DisplayContent(d *model.Document, legacyHTML string) string {
	if !d.IsEmpty() {
		return Render(d)
	}
	return legacyHTML
}
