package speech

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/folioapp/folio/htmldoc"
	"github.com/folioapp/folio/model"
)

// segment is one run of speakable text with optional SSML decoration.
// Building the full segment list before serializing keeps tag emission and
// whitespace handling in separate passes.
type segment struct {
	text       string
	emphasis   string // "strong", "moderate", or ""
	breakAfter string // pause duration such as "0.5s", or ""
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ToSSML compiles HTML into SSML-annotated text. Headings are wrapped in
// emphasis and followed by a pause scaled to their level; paragraph, list
// item, blockquote, and line-break boundaries each emit a short pause; all
// other markup is stripped. HTML entities are decoded to literal text during
// parsing, before any SSML tag exists, and whitespace is collapsed last, so
// the emitted tags stay intact. Empty or whitespace-only input yields "".
func ToSSML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var segs []segment
	collectSegments(root, &segs)
	return serialize(segs)
}

// DocumentSSML renders a document to HTML and compiles it to SSML.
func DocumentSSML(d *model.Document) string {
	return ToSSML(htmldoc.Render(d))
}

func collectSegments(n *html.Node, segs *[]segment) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			*segs = append(*segs, segment{text: n.Data})
		}
		return
	case html.ElementNode:
		// handled below
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectSegments(c, segs)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style:
		return

	case atom.H1, atom.H2:
		headingSegment(n, segs, "strong", "0.5s")
	case atom.H3, atom.H4:
		headingSegment(n, segs, "moderate", "0.4s")
	case atom.H5, atom.H6:
		headingSegment(n, segs, "moderate", "0.3s")

	case atom.P, atom.Li, atom.Blockquote:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectSegments(c, segs)
		}
		*segs = append(*segs, segment{breakAfter: "0.3s"})

	case atom.Br:
		*segs = append(*segs, segment{breakAfter: "0.3s"})

	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectSegments(c, segs)
		}
	}
}

func headingSegment(n *html.Node, segs *[]segment, level, pause string) {
	text := nodeText(n)
	if strings.TrimSpace(text) == "" {
		return
	}
	*segs = append(*segs, segment{text: text, emphasis: level, breakAfter: pause})
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// serialize emits the segments as one SSML string. Text is NFC-normalized
// and whitespace-collapsed per segment; the emitted tags themselves contain
// no whitespace runs, so the final trim cannot damage them.
func serialize(segs []segment) string {
	var sb strings.Builder

	flushText := func(text string) {
		t := collapse(text)
		if t == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}

	for _, s := range segs {
		if s.emphasis != "" {
			t := collapse(s.text)
			if t == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(`<emphasis level="` + s.emphasis + `">`)
			sb.WriteString(t)
			sb.WriteString(`</emphasis>`)
		} else if s.text != "" {
			flushText(s.text)
		}
		if s.breakAfter != "" && sb.Len() > 0 {
			sb.WriteString(` <break time="` + s.breakAfter + `"/>`)
		}
	}

	return strings.TrimSpace(sb.String())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(norm.NFC.String(s), " "))
}
