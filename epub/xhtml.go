package epub

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements must be self-closing in XHTML.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Wbr: true,
}

// namedToNumeric rewrites characters that HTML commonly expresses as named
// entities into numeric XML entities e-readers accept. Applied after the
// tree is re-serialized, so attribute restructuring never sees entity text.
var namedToNumeric = strings.NewReplacer(
	"\u00a0", "&#160;", // nbsp
	"—", "&#8212;", // mdash
	"–", "&#8211;", // ndash
	"‘", "&#8216;", // left single quote
	"’", "&#8217;", // right single quote
	"“", "&#8220;", // left double quote
	"”", "&#8221;", // right double quote
	"…", "&#8230;", // ellipsis
	"©", "&#169;", // copyright
	"®", "&#174;", // registered
	"™", "&#8482;", // trademark
)

// SanitizeXHTML converts arbitrary HTML into strict XHTML suitable for an
// EPUB content document. Void elements are self-closed; scripts, styles,
// and comments are removed; data-* attributes, empty attributes, and stray
// xmlns declarations are dropped. Entity conversion to numeric form happens
// after the tag restructuring, never before. Text content and block/inline
// structure are preserved. Unparseable input is returned unchanged.
func SanitizeXHTML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	body := findElement(root, atom.Body)
	if body == nil {
		body = root
	}

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		renderXHTML(&sb, c)
	}

	return namedToNumeric.Replace(sb.String())
}

func renderXHTML(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(escapeXHTMLText(n.Data))

	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		}

		sb.WriteByte('<')
		sb.WriteString(n.Data)
		for _, a := range n.Attr {
			if !keepAttr(a) {
				continue
			}
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(escapeXHTMLAttr(a.Val))
			sb.WriteByte('"')
		}

		if voidElements[n.DataAtom] && n.FirstChild == nil {
			sb.WriteString(" />")
			return
		}

		sb.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.Data)
		sb.WriteByte('>')

	case html.CommentNode:
		// dropped

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(sb, c)
		}
	}
}

func keepAttr(a html.Attribute) bool {
	if strings.HasPrefix(a.Key, "data-") {
		return false
	}
	if a.Key == "xmlns" || strings.HasPrefix(a.Key, "xmlns:") {
		return false
	}
	if strings.TrimSpace(a.Val) == "" {
		return false
	}
	return true
}

var xhtmlTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var xhtmlAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXHTMLText(s string) string { return xhtmlTextEscaper.Replace(s) }
func escapeXHTMLAttr(s string) string { return xhtmlAttrEscaper.Replace(s) }

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
