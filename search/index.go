// Package search maintains a full-text index over page content. Pages are
// indexed by their extracted plain text, so editor documents and legacy
// HTML pages search the same way.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/folioapp/folio/htmldoc"
	"github.com/folioapp/folio/model"
)

// Index wraps a Bleve search index over pages.
type Index struct {
	index bleve.Index
}

// IndexedPage is the shape stored in the index.
type IndexedPage struct {
	ID      string
	Title   string
	Content string
}

// Result is one search hit.
type Result struct {
	ID        string
	Title     string
	Score     float64
	Fragments map[string][]string // highlighted snippets keyed by field
}

// Open opens or creates an index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// OpenMemory creates an in-memory index, used by tests and previews.
func OpenMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Content", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexPage adds or replaces a page, preferring the document's text and
// falling back to text extracted from the legacy HTML rendering.
func (i *Index) IndexPage(id, title string, d *model.Document, legacyHTML string) error {
	content := d.PlainText()
	if content == "" && legacyHTML != "" {
		content = htmldoc.Parse(legacyHTML).PlainText()
	}
	return i.index.Index(id, &IndexedPage{ID: id, Title: title, Content: content})
}

// Delete removes a page from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Count returns the number of indexed pages.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Search runs a query string (quotes, boolean operators, fuzzy ~) and
// returns up to limit hits with highlighted fragments.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	query := bleve.NewQueryStringQuery(queryStr)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Title"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		results = append(results, r)
	}
	return results, nil
}
