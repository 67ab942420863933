package epub

import (
	"log/slog"

	"github.com/folioapp/folio/model"
)

// PageType distinguishes section dividers from content pages.
type PageType string

const (
	// PageTypeSection renders as a title-only divider and starts a new
	// group in both tables of contents.
	PageTypeSection PageType = "section"
	// PageTypePage renders full content.
	PageTypePage PageType = "page"
)

// Page is one page of the book at export time. Content is preferred when
// present; HTMLContent is the legacy fallback for older records. Pages are
// constructed from persisted rows, never mutated, and consumed once per
// export.
type Page struct {
	Title       string
	Content     *model.Document
	HTMLContent string
	Type        PageType
	Index       int
}

// Metadata holds the book-level Dublin Core fields.
type Metadata struct {
	Title       string
	Author      string
	Description string
	Language    string // BCP 47 tag; invalid or empty falls back to "en"
	Identifier  string // generated when empty
}

// Image is one downloaded image to bundle. Entries with no Data are
// skipped: the export proceeds and any reference keeps pointing at the
// original remote URL.
type Image struct {
	ID        string
	URL       string
	Data      []byte
	MediaType string
}

// BuildOptions controls optional parts of the package.
type BuildOptions struct {
	// IncludeCover adds a generated cover.jpg.
	IncludeCover bool
	// ShowTextOnCover draws the title and author onto the cover raster.
	ShowTextOnCover bool
	// Logger receives per-item warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultBuildOptions returns the standard export configuration.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		IncludeCover:    true,
		ShowTextOnCover: true,
	}
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
