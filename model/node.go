package model

import "strings"

// NodeType discriminates the node union. The set is closed: traversal code
// switches exhaustively over these constants, and anything else decodes as-is
// and is treated as an unknown block.
type NodeType string

// Node types produced by the editor.
const (
	NodeDoc         NodeType = "doc"
	NodeTitle       NodeType = "title"
	NodeHeading     NodeType = "heading"
	NodeParagraph   NodeType = "paragraph"
	NodeBlockquote  NodeType = "blockquote"
	NodeBulletList  NodeType = "bulletList"
	NodeOrderedList NodeType = "orderedList"
	NodeListItem    NodeType = "listItem"
	NodeCodeBlock   NodeType = "codeBlock"
	NodeImage       NodeType = "image"
	NodeTable       NodeType = "table"
	NodeTableRow    NodeType = "tableRow"
	NodeTableCell   NodeType = "tableCell"
	NodeTableHeader NodeType = "tableHeader"
	NodeText        NodeType = "text"
)

// Known reports whether t is one of the node types the editor produces.
func (t NodeType) Known() bool {
	switch t {
	case NodeDoc, NodeTitle, NodeHeading, NodeParagraph, NodeBlockquote,
		NodeBulletList, NodeOrderedList, NodeListItem, NodeCodeBlock,
		NodeImage, NodeTable, NodeTableRow, NodeTableCell, NodeTableHeader,
		NodeText:
		return true
	}
	return false
}

// String returns the wire name of the node type.
func (t NodeType) String() string { return string(t) }

// MarkType discriminates inline formatting annotations.
type MarkType string

// Mark types produced by the editor.
const (
	MarkBold   MarkType = "bold"
	MarkItalic MarkType = "italic"
	MarkCode   MarkType = "code"
	MarkLink   MarkType = "link"
)

// Mark is an inline formatting annotation on a text node. Marks affect
// rendering only; they never change the underlying plain text.
type Mark struct {
	Type  MarkType   `json:"type"`
	Attrs *MarkAttrs `json:"attrs,omitempty"`
}

// MarkAttrs holds mark attributes. Only link marks carry any today.
type MarkAttrs struct {
	Href string `json:"href,omitempty"`
}

// Href returns the link target for a link mark, or "".
func (m Mark) Href() string {
	if m.Attrs == nil {
		return ""
	}
	return m.Attrs.Href
}

// Node is one element of the document tree. Only text nodes carry literal
// text; all other nodes hold an ordered (possibly nil) Content slice.
type Node struct {
	Type    NodeType   `json:"type"`
	Text    string     `json:"text,omitempty"`
	Marks   []Mark     `json:"marks,omitempty"`
	Attrs   *NodeAttrs `json:"attrs,omitempty"`
	Content []*Node    `json:"content,omitempty"`
}

// Document is the root entity for one page's content. A nil or absent
// Content slice is equivalent to an empty one.
type Document struct {
	Type    string  `json:"type"`
	Content []*Node `json:"content,omitempty"`
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{Type: string(NodeDoc)}
}

// NewText creates a text leaf.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: NodeText, Text: text, Marks: marks}
}

// NewParagraph creates a paragraph holding a single text leaf.
func NewParagraph(text string) *Node {
	return &Node{Type: NodeParagraph, Content: []*Node{NewText(text)}}
}

// NewHeading creates a heading of the given level holding a single text leaf.
func NewHeading(level int, text string) *Node {
	return &Node{
		Type:    NodeHeading,
		Attrs:   &NodeAttrs{Level: level},
		Content: []*Node{NewText(text)},
	}
}

// Level returns the heading level, defaulting to 1 when absent or out of
// range. Valid levels are 1 through 6.
func (n *Node) Level() int {
	if n.Attrs == nil || n.Attrs.Level < 1 || n.Attrs.Level > 6 {
		return 1
	}
	return n.Attrs.Level
}

// HasMark reports whether the node carries a mark of the given type.
func (n *Node) HasMark(t MarkType) bool {
	for _, m := range n.Marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// PlainText concatenates every descendant text leaf in document order.
// No separator is inserted between blocks; two adjacent paragraphs yield
// their texts run together. This matches the behavior of all previously
// stored content and must not change (content hashes depend on it).
func (n *Node) PlainText() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.appendText(&sb)
	return sb.String()
}

func (n *Node) appendText(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == NodeText {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Content {
		c.appendText(sb)
	}
}

// PlainText concatenates every text leaf of the document in document order,
// with no separators between blocks. A nil document yields "".
func (d *Document) PlainText() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, n := range d.Content {
		n.appendText(&sb)
	}
	return sb.String()
}

// PlainText is the nil-safe package-level form of [Document.PlainText].
func PlainText(d *Document) string { return d.PlainText() }

// IsEmpty reports whether the document is nil, has no content, or contains
// only whitespace text. Used by display-preference logic to decide when to
// fall back to legacy HTML.
func (d *Document) IsEmpty() bool {
	if d == nil || len(d.Content) == 0 {
		return true
	}
	return strings.TrimSpace(d.PlainText()) == ""
}

// Walk visits n and every descendant in document order. The visitor returns
// false to skip a node's children. Walk tolerates nil nodes anywhere.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Content {
		Walk(c, visit)
	}
}

// WalkDocument visits every top-level node and its descendants.
func WalkDocument(d *Document, visit func(*Node) bool) {
	if d == nil {
		return
	}
	for _, n := range d.Content {
		Walk(n, visit)
	}
}
