package epub

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	contentDocument = "content.xhtml"
)

// buildContainer produces META-INF/container.xml.
func buildContainer() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", oebpsDir+"/content.opf")
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	return doc
}

// buildOPF produces the package document: metadata, manifest, spine.
func buildOPF(meta Metadata, identifier, lang string, images []Image, hasCover bool, now time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("version", "3.0")
	pkg.CreateAttr("unique-identifier", "BookId")

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")

	dcID := metadata.CreateElement("dc:identifier")
	dcID.CreateAttr("id", "BookId")
	dcID.SetText(identifier)

	metadata.CreateElement("dc:title").SetText(meta.Title)
	metadata.CreateElement("dc:language").SetText(lang)

	if meta.Author != "" {
		metadata.CreateElement("dc:creator").SetText(meta.Author)
	}
	if meta.Description != "" {
		metadata.CreateElement("dc:description").SetText(meta.Description)
	}

	modified := metadata.CreateElement("meta")
	modified.CreateAttr("property", "dcterms:modified")
	modified.SetText(now.UTC().Format("2006-01-02T15:04:05Z"))

	if hasCover {
		// EPUB 2 style cover hint, kept for older readers.
		coverMeta := metadata.CreateElement("meta")
		coverMeta.CreateAttr("name", "cover")
		coverMeta.CreateAttr("content", "cover-image")
	}

	manifest := pkg.CreateElement("manifest")
	addItem := func(id, href, mediaType, properties string) {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", id)
		item.CreateAttr("href", href)
		item.CreateAttr("media-type", mediaType)
		if properties != "" {
			item.CreateAttr("properties", properties)
		}
	}

	addItem("nav", "nav.xhtml", "application/xhtml+xml", "nav")
	addItem("ncx", "toc.ncx", "application/x-dtbncx+xml", "")
	addItem("content", contentDocument, "application/xhtml+xml", "")
	addItem("css", "styles.css", "text/css", "")
	if hasCover {
		addItem("cover-image", "cover.jpg", "image/jpeg", "cover-image")
	}
	for _, img := range images {
		if len(img.Data) == 0 {
			continue
		}
		mt := img.MediaType
		if mt == "" {
			mt = "image/jpeg"
		}
		addItem("img-"+img.ID, imagePath(img.ID), mt, "")
	}

	spine := pkg.CreateElement("spine")
	spine.CreateAttr("toc", "ncx")
	itemref := spine.CreateElement("itemref")
	itemref.CreateAttr("idref", "content")

	return doc
}

// buildNav produces nav.xhtml, the EPUB 3 table of contents. Page entries
// group under the most recent section entry's nested list; building the
// tree with etree keeps every list balanced no matter how the book ends.
func buildNav(meta Metadata, pages []Page) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	htmlEl := doc.CreateElement("html")
	htmlEl.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	htmlEl.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	head := htmlEl.CreateElement("head")
	head.CreateElement("title").SetText(meta.Title)

	body := htmlEl.CreateElement("body")
	nav := body.CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateElement("h1").SetText("Table of Contents")

	root := nav.CreateElement("ol")

	var sectionItem *etree.Element // li of the current section
	var sectionList *etree.Element // its lazily created nested ol

	addEntry := func(parent *etree.Element, page Page) *etree.Element {
		li := parent.CreateElement("li")
		a := li.CreateElement("a")
		a.CreateAttr("href", contentDocument+"#"+pageAnchor(page.Index))
		a.SetText(pageDisplayTitle(page))
		return li
	}

	for _, page := range pages {
		if page.Type == PageTypeSection {
			sectionItem = addEntry(root, page)
			sectionList = nil
			continue
		}
		if sectionItem != nil {
			if sectionList == nil {
				sectionList = sectionItem.CreateElement("ol")
			}
			addEntry(sectionList, page)
		} else {
			addEntry(root, page)
		}
	}

	return doc
}

// buildNCX produces toc.ncx, the legacy table of contents, mirroring the
// nav.xhtml grouping with nested navPoints.
func buildNCX(meta Metadata, identifier string, pages []Page) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")
	addMeta := func(name, content string) {
		m := head.CreateElement("meta")
		m.CreateAttr("name", name)
		m.CreateAttr("content", content)
	}
	addMeta("dtb:uid", identifier)
	addMeta("dtb:depth", ncxDepth(pages))
	addMeta("dtb:totalPageCount", "0")
	addMeta("dtb:maxPageNumber", "0")

	docTitle := ncx.CreateElement("docTitle")
	docTitle.CreateElement("text").SetText(meta.Title)

	navMap := ncx.CreateElement("navMap")

	playOrder := 0
	addPoint := func(parent *etree.Element, page Page) *etree.Element {
		playOrder++
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", "navpoint-"+strconv.Itoa(page.Index))
		np.CreateAttr("playOrder", strconv.Itoa(playOrder))
		label := np.CreateElement("navLabel")
		label.CreateElement("text").SetText(pageDisplayTitle(page))
		content := np.CreateElement("content")
		content.CreateAttr("src", contentDocument+"#"+pageAnchor(page.Index))
		return np
	}

	var sectionPoint *etree.Element
	for _, page := range pages {
		if page.Type == PageTypeSection {
			sectionPoint = addPoint(navMap, page)
			continue
		}
		if sectionPoint != nil {
			addPoint(sectionPoint, page)
		} else {
			addPoint(navMap, page)
		}
	}

	return doc
}

func ncxDepth(pages []Page) string {
	for _, p := range pages {
		if p.Type == PageTypeSection {
			return "2"
		}
	}
	return "1"
}

func pageAnchor(index int) string {
	return "page" + strconv.Itoa(index)
}

func pageDisplayTitle(p Page) string {
	if p.Title != "" {
		return p.Title
	}
	return "Untitled"
}
