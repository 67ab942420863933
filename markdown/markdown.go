// Package markdown imports Markdown text into the document model. It is the
// second front door for legacy content alongside htmldoc.Parse: pasted or
// previously exported Markdown becomes a regular document that every
// downstream converter understands.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/folioapp/folio/model"
)

// Parse converts Markdown into a document. The result is always a valid
// document; input that contains nothing renderable yields one with empty
// content.
func Parse(src []byte) *model.Document {
	doc := model.NewDocument()
	doc.Content = []*model.Node{}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if b := block(n, src); b != nil {
			doc.Content = append(doc.Content, b)
		}
	}
	return doc
}

func block(n ast.Node, src []byte) *model.Node {
	switch node := n.(type) {
	case *ast.Heading:
		level := node.Level
		if level < 1 || level > 6 {
			level = 1
		}
		return &model.Node{
			Type:    model.NodeHeading,
			Attrs:   &model.NodeAttrs{Level: level},
			Content: inlineChildren(node, src, nil),
		}

	case *ast.Paragraph:
		return &model.Node{
			Type:    model.NodeParagraph,
			Content: inlineChildren(node, src, nil),
		}

	case *ast.TextBlock:
		return &model.Node{
			Type:    model.NodeParagraph,
			Content: inlineChildren(node, src, nil),
		}

	case *ast.Blockquote:
		bq := &model.Node{Type: model.NodeBlockquote}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if b := block(c, src); b != nil {
				bq.Content = append(bq.Content, b)
			}
		}
		return bq

	case *ast.List:
		list := &model.Node{Type: model.NodeBulletList}
		if node.IsOrdered() {
			list.Type = model.NodeOrderedList
			if node.Start > 1 {
				list.Attrs = &model.NodeAttrs{Start: node.Start}
			}
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			item := &model.Node{Type: model.NodeListItem}
			for ic := c.FirstChild(); ic != nil; ic = ic.NextSibling() {
				if b := block(ic, src); b != nil {
					item.Content = append(item.Content, b)
				}
			}
			list.Content = append(list.Content, item)
		}
		return list

	case *ast.FencedCodeBlock:
		code := &model.Node{Type: model.NodeCodeBlock}
		if lang := node.Language(src); len(lang) > 0 {
			code.Attrs = &model.NodeAttrs{Language: string(lang)}
		}
		code.Content = []*model.Node{model.NewText(blockLines(node, src))}
		return code

	case *ast.CodeBlock:
		return &model.Node{
			Type:    model.NodeCodeBlock,
			Content: []*model.Node{model.NewText(blockLines(node, src))},
		}

	case *ast.ThematicBreak:
		return nil

	default:
		return nil
	}
}

// blockLines joins the raw source lines of a code block, trimming the
// trailing newline the fence contributes.
func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func inlineChildren(n ast.Node, src []byte, marks []model.Mark) []*model.Node {
	var out []*model.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, inline(c, src, marks)...)
	}
	return out
}

func inline(n ast.Node, src []byte, marks []model.Mark) []*model.Node {
	switch node := n.(type) {
	case *ast.Text:
		t := string(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			t += " "
		}
		if t == "" {
			return nil
		}
		return []*model.Node{model.NewText(t, marks...)}

	case *ast.String:
		if len(node.Value) == 0 {
			return nil
		}
		return []*model.Node{model.NewText(string(node.Value), marks...)}

	case *ast.Emphasis:
		mark := model.Mark{Type: model.MarkItalic}
		if node.Level >= 2 {
			mark.Type = model.MarkBold
		}
		return inlineChildren(node, src, appendMark(marks, mark))

	case *ast.CodeSpan:
		return inlineChildren(node, src, appendMark(marks, model.Mark{Type: model.MarkCode}))

	case *ast.Link:
		mark := model.Mark{Type: model.MarkLink}
		if len(node.Destination) > 0 {
			mark.Attrs = &model.MarkAttrs{Href: string(node.Destination)}
		}
		return inlineChildren(node, src, appendMark(marks, mark))

	case *ast.AutoLink:
		url := string(node.URL(src))
		linked := appendMark(marks, model.Mark{
			Type:  model.MarkLink,
			Attrs: &model.MarkAttrs{Href: url},
		})
		return []*model.Node{model.NewText(url, linked...)}

	case *ast.Image:
		// Inline images surface as image nodes; the renderer hoists them.
		return []*model.Node{{
			Type: model.NodeImage,
			Attrs: &model.NodeAttrs{
				Src: string(node.Destination),
				Alt: nodeText(node, src),
			},
		}}

	default:
		return inlineChildren(node, src, marks)
	}
}

func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		} else {
			sb.WriteString(nodeText(c, src))
		}
	}
	return sb.String()
}

// appendMark copies before appending so sibling spans never share a slice.
func appendMark(marks []model.Mark, m model.Mark) []model.Mark {
	out := make([]model.Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}
