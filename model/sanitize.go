package model

// Sanitize returns a structurally identical deep copy of the document with
// volatile attributes removed. Today that means audio-sync indices and
// attribute objects left empty after stripping; any future editor-only
// annotation must be filtered here before export. The input is never
// mutated. A nil document sanitizes to nil.
func Sanitize(d *Document) *Document {
	if d == nil {
		return nil
	}
	out := d.Clone()
	for _, n := range out.Content {
		sanitizeNode(n)
	}
	return out
}

func sanitizeNode(n *Node) {
	if n == nil {
		return
	}
	if n.Attrs != nil {
		n.Attrs.AudioIndex = 0
		if n.Attrs.isZero() {
			n.Attrs = nil
		}
	}
	for _, c := range n.Content {
		sanitizeNode(c)
	}
}
