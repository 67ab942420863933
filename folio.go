// Package folio converts rich-text book content between its canonical
// document model and the formats a published book needs: display HTML,
// plain text, SSML narration, audio blocks, and packaged EPUB files.
//
// Basic usage:
//
//	doc, err := folio.ParseDocument(raw)
//	if err != nil {
//	    // handle error
//	}
//	html := folio.RenderHTML(doc)
//	text := folio.PlainText(doc)
//
// Exporting a book:
//
//	err := folio.ExportEPUB(w, meta, pages, images,
//	    folio.WithCoverText(false),
//	    folio.WithLogger(logger),
//	)
//
// The underlying packages (model, htmldoc, speech, epub, markdown, search,
// audiostore, tts) are available directly for finer control.
package folio

import (
	"io"
	"log/slog"

	"github.com/folioapp/folio/epub"
	"github.com/folioapp/folio/htmldoc"
	"github.com/folioapp/folio/model"
	"github.com/folioapp/folio/speech"
)

// Option configures an EPUB export.
type Option func(*epub.BuildOptions)

// WithCover controls whether a generated cover image is included.
func WithCover(include bool) Option {
	return func(o *epub.BuildOptions) { o.IncludeCover = include }
}

// WithCoverText controls whether the generated cover draws the title and
// author, for books whose cover art already carries them.
func WithCoverText(show bool) Option {
	return func(o *epub.BuildOptions) { o.ShowTextOnCover = show }
}

// WithLogger sets the logger used during export.
func WithLogger(l *slog.Logger) Option {
	return func(o *epub.BuildOptions) { o.Logger = l }
}

// ParseDocument decodes a stored document. Empty input yields a nil document
// and no error.
func ParseDocument(raw []byte) (*model.Document, error) {
	return model.ParseDocument(raw)
}

// RenderHTML renders a document to display HTML. A nil document renders as
// the empty string.
func RenderHTML(d *model.Document) string {
	return htmldoc.Render(d)
}

// PlainText extracts the document's text content for search indexing and
// descriptions.
func PlainText(d *model.Document) string {
	return model.PlainText(d)
}

// SSML compiles a document to speech markup for narration.
func SSML(d *model.Document) string {
	return speech.DocumentSSML(d)
}

// AudioBlocks splits a document into speakable units.
func AudioBlocks(d *model.Document, cfg speech.SegmenterConfig) []speech.Block {
	return speech.ExtractBlocks(d, cfg)
}

// ExportEPUB packages pages and images into an EPUB archive written to w.
func ExportEPUB(w io.Writer, meta epub.Metadata, pages []epub.Page, images []epub.Image, opts ...Option) error {
	buildOpts := epub.DefaultBuildOptions()
	for _, opt := range opts {
		opt(&buildOpts)
	}
	return epub.Build(w, meta, pages, images, buildOpts)
}
