package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/folioapp/folio/htmldoc"
	"github.com/folioapp/folio/model"
)

const stylesheet = `body { margin: 1em; line-height: 1.6; font-family: serif; }
h1.section-title { text-align: center; margin: 3em 0; }
h2.page-title { margin-top: 2em; }
img { max-width: 100%; height: auto; }
pre { white-space: pre-wrap; font-size: 0.85em; }
blockquote { margin-left: 1em; padding-left: 0.5em; border-left: 2px solid #999; }
section { page-break-before: always; }
`

// Build writes a complete EPUB 3 archive. The mimetype entry is written
// first and stored uncompressed, as readers require. Each page becomes one
// <section> of a single content document; section-type pages render as
// title-only dividers. Images without data are skipped with a warning and
// their references left remote. The writer owns nothing it is handed:
// pages and images are read-only inputs.
func Build(w io.Writer, meta Metadata, pages []Page, images []Image, opts BuildOptions) error {
	log := opts.logger()

	identifier := meta.Identifier
	if identifier == "" {
		identifier = "urn:uuid:" + uuid.NewString()
	}
	lang := meta.Language
	if _, err := language.Parse(lang); lang == "" || err != nil {
		lang = "en"
	}

	// Map remote URLs to bundled paths; images that failed to download stay
	// out of the map and out of the manifest.
	urlToID := make(map[string]string, len(images))
	var bundled []Image
	for _, img := range images {
		if len(img.Data) == 0 {
			log.Warn("image skipped from epub", "url", img.URL)
			continue
		}
		if img.URL != "" {
			urlToID[img.URL] = img.ID
		}
		bundled = append(bundled, img)
	}

	zw := zip.NewWriter(w)

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("writing mimetype: %w", err)
	}
	if err := writeXML(zw, "META-INF/container.xml", buildContainer()); err != nil {
		return err
	}
	if err := writeFile(zw, oebpsDir+"/styles.css", []byte(stylesheet)); err != nil {
		return err
	}

	hasCover := opts.IncludeCover
	if hasCover {
		cover, err := Cover(meta, opts.ShowTextOnCover)
		if err != nil {
			log.Warn("cover generation failed", "error", err)
			hasCover = false
		} else if err := writeFile(zw, oebpsDir+"/cover.jpg", cover); err != nil {
			return err
		}
	}

	for _, img := range bundled {
		if err := writeFile(zw, oebpsDir+"/"+imagePath(img.ID), img.Data); err != nil {
			return err
		}
	}

	content := renderContentDocument(meta, pages, urlToID, lang)
	if err := writeFile(zw, oebpsDir+"/"+contentDocument, []byte(content)); err != nil {
		return err
	}

	now := time.Now()
	if err := writeXML(zw, oebpsDir+"/nav.xhtml", buildNav(meta, pages)); err != nil {
		return err
	}
	if err := writeXML(zw, oebpsDir+"/toc.ncx", buildNCX(meta, identifier, pages)); err != nil {
		return err
	}
	if err := writeXML(zw, oebpsDir+"/content.opf", buildOPF(meta, identifier, lang, bundled, hasCover, now)); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// renderContentDocument concatenates all pages into one XHTML document,
// one <section> per page, anchored for the tables of contents.
func renderContentDocument(meta Metadata, pages []Page, urlToID map[string]string, lang string) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<!DOCTYPE html>` + "\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="` + lang + `">` + "\n")
	sb.WriteString("<head>\n<title>" + escapeXHTMLText(meta.Title) + "</title>\n")
	sb.WriteString(`<link rel="stylesheet" type="text/css" href="styles.css" />` + "\n")
	sb.WriteString("</head>\n<body>\n")

	for _, page := range pages {
		sb.WriteString(`<section id="` + pageAnchor(page.Index) + `">` + "\n")

		if page.Type == PageTypeSection {
			sb.WriteString(`<h1 class="section-title">` + escapeXHTMLText(pageDisplayTitle(page)) + "</h1>\n")
			sb.WriteString("</section>\n")
			continue
		}

		sb.WriteString(`<h2 class="page-title">` + escapeXHTMLText(pageDisplayTitle(page)) + "</h2>\n")
		sb.WriteString(`<div class="page-content">`)
		sb.WriteString(RewriteImageURLs(RenderPage(page), urlToID))
		sb.WriteString("</div>\n</section>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// RenderPage produces the sanitized XHTML body for one page: the document
// when present, the legacy HTML otherwise, and "" when the page has
// neither. Both authoring paths go through the same sanitizer, which is
// what keeps their output equivalent.
func RenderPage(page Page) string {
	if !page.Content.IsEmpty() {
		return SanitizeXHTML(htmldoc.Render(model.Sanitize(page.Content)))
	}
	if page.HTMLContent != "" {
		return SanitizeXHTML(page.HTMLContent)
	}
	return ""
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func writeXML(zw *zip.Writer, name string, doc *etree.Document) error {
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", name, err)
	}
	return writeFile(zw, name, []byte(s))
}
