package model

import (
	"encoding/json"
	"fmt"
)

// ParseDocument decodes the persisted editor JSON. Empty input and the JSON
// null literal both yield a nil document (the defined empty-input result).
// A document with no content field decodes to one with nil Content, which
// every operation treats as empty.
func ParseDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if d.Type == "" && d.Content == nil {
		// json "null"
		return nil, nil
	}
	return &d, nil
}

// JSON encodes the document in the persisted editor format.
func (d *Document) JSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d)
}

// Clone returns a deep copy of the document. A nil document clones to nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Type: d.Type}
	if d.Content != nil {
		out.Content = make([]*Node, len(d.Content))
		for i, n := range d.Content {
			out.Content[i] = n.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the node and its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Text: n.Text, Attrs: n.Attrs.clone()}
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			out.Marks[i] = m
			if m.Attrs != nil {
				attrs := *m.Attrs
				out.Marks[i].Attrs = &attrs
			}
		}
	}
	if n.Content != nil {
		out.Content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}
