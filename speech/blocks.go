package speech

import (
	"regexp"
	"strings"

	"github.com/folioapp/folio/model"
)

// codeBlockNarration is spoken in place of code text. Code is announced,
// never read aloud.
const codeBlockNarration = "Code block"

// minUnknownTextLen is the floor below which text from unrecognized node
// types is not narrated.
const minUnknownTextLen = 10

// Block is one speakable unit derived from a document. Index is the join
// key for persisted audio records; Hash identifies the text content so
// stale audio can be detected.
type Block struct {
	Index int
	Type  model.NodeType
	Text  string
	Level int // heading level; zero otherwise
	Hash  string
}

// SegmenterConfig controls audio-block extraction. The zero value disables
// extraction entirely; use [DefaultSegmenterConfig] for the standard setup.
type SegmenterConfig struct {
	// AudioBlocksEnabled gates the whole feature.
	AudioBlocksEnabled bool

	// MaxWordsPerBlock is the paragraph split threshold. Paragraphs over
	// this length are divided at sentence boundaries into chunks that each
	// stay within it.
	MaxWordsPerBlock int
}

// DefaultSegmenterConfig returns the production segmenter configuration.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		AudioBlocksEnabled: true,
		MaxWordsPerBlock:   150,
	}
}

var sentenceEnd = regexp.MustCompile(`[^.!?]*[.!?]+(?:\s+|$)|[^.!?]+$`)

// ExtractBlocks walks the document's top-level content and returns its
// speakable units in order, with dense sequential indices. It descends into
// lists (one block per list item) but no deeper; skips anything whose text
// is empty or whitespace; splits oversized paragraphs at sentence
// boundaries; and announces code blocks without reading them. Returns nil
// when the feature is disabled or the document is nil.
func ExtractBlocks(d *model.Document, cfg SegmenterConfig) []Block {
	if !cfg.AudioBlocksEnabled || d == nil {
		return nil
	}
	maxWords := cfg.MaxWordsPerBlock
	if maxWords <= 0 {
		maxWords = 150
	}

	var blocks []Block
	add := func(t model.NodeType, text string, level int) {
		blocks = append(blocks, Block{
			Index: len(blocks),
			Type:  t,
			Text:  text,
			Level: level,
			Hash:  ContentHash(text),
		})
	}

	for _, n := range d.Content {
		if n == nil {
			continue
		}
		text := strings.TrimSpace(n.PlainText())

		switch n.Type {
		case model.NodeHeading:
			if text != "" {
				add(n.Type, text, n.Level())
			}

		case model.NodeTitle:
			if text != "" {
				add(n.Type, text, 1)
			}

		case model.NodeParagraph:
			if text == "" {
				continue
			}
			for _, chunk := range splitLongText(text, maxWords) {
				add(n.Type, chunk, 0)
			}

		case model.NodeBlockquote:
			if text != "" {
				add(n.Type, text, 0)
			}

		case model.NodeBulletList, model.NodeOrderedList:
			for _, item := range n.Content {
				if item == nil || item.Type != model.NodeListItem {
					continue
				}
				itemText := strings.TrimSpace(item.PlainText())
				if itemText != "" {
					add(model.NodeListItem, itemText, 0)
				}
			}

		case model.NodeCodeBlock:
			if text != "" {
				add(n.Type, codeBlockNarration, 0)
			}

		default:
			// Images, tables, and foreign node types: narrate only when
			// there is enough text to be worth hearing.
			if len(text) > minUnknownTextLen {
				add(n.Type, text, 0)
			}
		}
	}

	return blocks
}

// splitLongText returns text unchanged when it fits within maxWords,
// otherwise splits it at sentence boundaries into chunks that each stay
// within the limit. A single sentence over the limit is kept whole; there
// is no smaller speakable boundary to cut at.
func splitLongText(text string, maxWords int) []string {
	if wordCount(text) <= maxWords {
		return []string{text}
	}

	sentences := sentenceEnd.FindAllString(text, -1)
	var chunks []string
	var current strings.Builder
	currentWords := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentWords = 0
	}

	for _, sentence := range sentences {
		w := wordCount(sentence)
		if currentWords > 0 && currentWords+w > maxWords {
			flush()
		}
		current.WriteString(sentence)
		currentWords += w
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
