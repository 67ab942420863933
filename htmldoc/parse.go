package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/folioapp/folio/model"
)

// Parse converts legacy HTML into a document. It is best effort: structure
// the editor cannot represent is flattened, but the result is always a valid
// document, never nil. The exception is empty input, where nil is the
// defined result (an absent page, distinct from a present-but-unparseable
// one).
func Parse(src string) *model.Document {
	if strings.TrimSpace(src) == "" {
		return nil
	}

	doc := model.NewDocument()
	doc.Content = []*model.Node{}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return doc
	}

	body := findBody(root)
	if body == nil {
		body = root
	}

	p := &parser{}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		p.block(c, &doc.Content)
	}
	p.flushLoose(&doc.Content)

	return doc
}

// parser accumulates loose inline content (text directly inside body or a
// div) so it can be wrapped in a paragraph.
type parser struct {
	loose []*model.Node
}

func (p *parser) flushLoose(out *[]*model.Node) {
	if len(p.loose) == 0 {
		return
	}
	text := strings.Builder{}
	for _, n := range p.loose {
		text.WriteString(n.PlainText())
	}
	if strings.TrimSpace(text.String()) != "" {
		*out = append(*out, &model.Node{Type: model.NodeParagraph, Content: p.loose})
	}
	p.loose = nil
}

func (p *parser) block(n *html.Node, out *[]*model.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			p.loose = append(p.loose, model.NewText(n.Data))
		}
		return
	case html.ElementNode:
		// handled below
	default:
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.flushLoose(out)
		level := int(n.Data[1] - '0')
		*out = append(*out, &model.Node{
			Type:    model.NodeHeading,
			Attrs:   &model.NodeAttrs{Level: level},
			Content: inline(n, nil),
		})

	case atom.P:
		p.flushLoose(out)
		*out = append(*out, &model.Node{
			Type:    model.NodeParagraph,
			Content: inline(n, nil),
		})

	case atom.Blockquote:
		p.flushLoose(out)
		bq := &model.Node{Type: model.NodeBlockquote}
		inner := &parser{}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			inner.block(c, &bq.Content)
		}
		inner.flushLoose(&bq.Content)
		*out = append(*out, bq)

	case atom.Ul, atom.Ol:
		p.flushLoose(out)
		list := &model.Node{Type: model.NodeBulletList}
		if n.DataAtom == atom.Ol {
			list.Type = model.NodeOrderedList
			if start := attr(n, "start"); start != "" {
				if v, err := strconv.Atoi(start); err == nil && v > 0 {
					list.Attrs = &model.NodeAttrs{Start: v}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				item := &model.Node{Type: model.NodeListItem}
				itemParser := &parser{}
				for lc := c.FirstChild; lc != nil; lc = lc.NextSibling {
					itemParser.block(lc, &item.Content)
				}
				itemParser.flushLoose(&item.Content)
				list.Content = append(list.Content, item)
			}
		}
		*out = append(*out, list)

	case atom.Pre:
		p.flushLoose(out)
		code := &model.Node{Type: model.NodeCodeBlock}
		inner := n
		if c := findChild(n, atom.Code); c != nil {
			inner = c
			if lang := codeLanguage(c); lang != "" {
				code.Attrs = &model.NodeAttrs{Language: lang}
			}
		}
		code.Content = []*model.Node{model.NewText(textContent(inner))}
		*out = append(*out, code)

	case atom.Img:
		p.flushLoose(out)
		*out = append(*out, &model.Node{
			Type:  model.NodeImage,
			Attrs: &model.NodeAttrs{Src: attr(n, "src"), Alt: attr(n, "alt")},
		})

	case atom.Table:
		p.flushLoose(out)
		*out = append(*out, parseTable(n))

	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Span:
		// Transparent containers: recurse.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c, out)
		}

	case atom.Script, atom.Style:
		// dropped

	case atom.Strong, atom.B, atom.Em, atom.I, atom.Code, atom.A:
		// Inline formatting loose in block context.
		p.loose = append(p.loose, inlineNode(n, nil)...)

	case atom.Br:
		// dropped; the model has no line-break node

	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c, out)
		}
	}
}

// inline extracts the text leaves of a block element, tracking marks.
func inline(n *html.Node, marks []model.Mark) []*model.Node {
	var out []*model.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, inlineNode(c, marks)...)
	}
	return out
}

func inlineNode(n *html.Node, marks []model.Mark) []*model.Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return []*model.Node{model.NewText(n.Data, marks...)}
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		return inline(n, appendMark(marks, model.Mark{Type: model.MarkBold}))
	case atom.Em, atom.I:
		return inline(n, appendMark(marks, model.Mark{Type: model.MarkItalic}))
	case atom.Code:
		return inline(n, appendMark(marks, model.Mark{Type: model.MarkCode}))
	case atom.A:
		link := model.Mark{Type: model.MarkLink}
		if href := attr(n, "href"); href != "" {
			link.Attrs = &model.MarkAttrs{Href: href}
		}
		return inline(n, appendMark(marks, link))
	case atom.Script, atom.Style:
		return nil
	default:
		return inline(n, marks)
	}
}

// appendMark copies before appending so sibling spans never share a slice.
func appendMark(marks []model.Mark, m model.Mark) []model.Mark {
	out := make([]model.Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}

func parseTable(n *html.Node) *model.Node {
	table := &model.Node{Type: model.NodeTable}
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				row := &model.Node{Type: model.NodeTableRow}
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode {
						continue
					}
					switch cell.DataAtom {
					case atom.Td, atom.Th:
						kind := model.NodeTableCell
						if cell.DataAtom == atom.Th {
							kind = model.NodeTableHeader
						}
						row.Content = append(row.Content, &model.Node{
							Type:    kind,
							Content: inline(cell, nil),
						})
					}
				}
				table.Content = append(table.Content, row)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				rows(c)
			}
		}
	}
	rows(n)
	return table
}

func codeLanguage(code *html.Node) string {
	for _, cls := range strings.Fields(attr(code, "class")) {
		if lang, ok := strings.CutPrefix(cls, "language-"); ok {
			return lang
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func findChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
