// Package tts orchestrates per-block narration for pages. The caller supplies
// the actual synthesis backend; this package decides which blocks need new
// audio, compiles each block to SSML, and records the results.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	"github.com/folioapp/folio/audiostore"
	"github.com/folioapp/folio/model"
	"github.com/folioapp/folio/speech"
)

// DefaultTimeout bounds a single block's synthesis call.
const DefaultTimeout = 45 * time.Second

// Audio is the result of synthesizing one block.
type Audio struct {
	URL      string
	Duration float64
}

// Synthesizer turns SSML into hosted audio. Implementations wrap whatever
// speech service the host application uses.
type Synthesizer interface {
	Synthesize(ctx context.Context, ssml string) (Audio, error)
}

// Generator drives block-by-block audio generation for pages.
type Generator struct {
	store   *audiostore.Store
	synth   Synthesizer
	timeout time.Duration
	logger  *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTimeout overrides the per-block synthesis timeout.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger used for progress and skip decisions.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator returns a Generator writing results to store and synthesizing
// through synth.
func NewGenerator(store *audiostore.Store, synth Synthesizer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:   store,
		synth:   synth,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePage synthesizes audio for every block of the page that is missing
// or stale, and trims records left over from a longer previous version. A
// block whose stored hash matches its current text keeps its existing audio.
// The first synthesis failure stops the run and is returned; already
// generated blocks stay recorded. When the feature is disabled or the page
// has no document, nothing runs and stored records are left alone.
func (g *Generator) GeneratePage(ctx context.Context, pageID string, d *model.Document, cfg speech.SegmenterConfig) error {
	if !cfg.AudioBlocksEnabled || d == nil {
		return nil
	}
	blocks := speech.ExtractBlocks(d, cfg)

	if err := g.store.TrimPage(ctx, pageID, len(blocks)); err != nil {
		return err
	}

	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		current, err := g.store.IsCurrent(ctx, pageID, block.Index, block.Hash)
		if err != nil {
			return err
		}
		if current {
			g.logger.Debug("audio block current, skipping",
				"page", pageID, "block", block.Index)
			continue
		}

		audio, err := g.synthesizeBlock(ctx, block)
		if err != nil {
			return fmt.Errorf("synthesize block %d of page %s: %w", block.Index, pageID, err)
		}

		rec := &audiostore.BlockRecord{
			PageID:      pageID,
			BlockIndex:  block.Index,
			BlockType:   string(block.Type),
			TextContent: block.Text,
			ContentHash: block.Hash,
			AudioURL:    audio.URL,
			Duration:    audio.Duration,
		}
		if err := g.store.Upsert(ctx, rec); err != nil {
			return err
		}
		g.logger.Info("audio block generated",
			"page", pageID, "block", block.Index, "duration", audio.Duration)
	}
	return nil
}

func (g *Generator) synthesizeBlock(ctx context.Context, block speech.Block) (Audio, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.synth.Synthesize(ctx, BlockSSML(block))
}

// BlockSSML compiles a single audio block to SSML. Headings keep their
// emphasis and pause treatment; everything else reads as a paragraph.
func BlockSSML(block speech.Block) string {
	var markup string
	switch block.Type {
	case model.NodeHeading, model.NodeTitle:
		level := block.Level
		if level < 1 || level > 6 {
			level = 1
		}
		markup = fmt.Sprintf("<h%d>%s</h%d>", level, html.EscapeString(block.Text), level)
	default:
		markup = "<p>" + html.EscapeString(block.Text) + "</p>"
	}
	return speech.ToSSML(markup)
}
