package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/folioapp/folio/model"
)

func buildToMap(t *testing.T, meta Metadata, pages []Page, images []Image, opts BuildOptions) map[string]string {
	t.Helper()

	var buf bytes.Buffer
	if err := Build(&buf, meta, pages, images, opts); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}

	// The mimetype entry must be first and stored, per the EPUB container
	// rules.
	first := zr.File[0]
	if first.Name != "mimetype" {
		t.Errorf("first entry = %q, want mimetype", first.Name)
	}
	if first.Method != zip.Store {
		t.Errorf("mimetype method = %d, want Store", first.Method)
	}

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestBuild_ContainerLayout(t *testing.T) {
	meta := Metadata{Title: "My Book", Author: "A. Writer", Language: "en"}
	pages := []Page{
		{Title: "Part One", Type: PageTypeSection, Index: 0},
		{Title: "Chapter", Type: PageTypePage, Index: 1,
			Content: &model.Document{Type: "doc", Content: []*model.Node{model.NewParagraph("Hello.")}}},
	}

	files := buildToMap(t, meta, pages, nil, DefaultBuildOptions())

	for _, name := range []string{
		"mimetype",
		"META-INF/container.xml",
		"OEBPS/content.opf",
		"OEBPS/nav.xhtml",
		"OEBPS/toc.ncx",
		"OEBPS/content.xhtml",
		"OEBPS/styles.css",
		"OEBPS/cover.jpg",
	} {
		if _, ok := files[name]; !ok {
			t.Errorf("missing archive entry %s", name)
		}
	}

	if files["mimetype"] != "application/epub+zip" {
		t.Errorf("mimetype = %q", files["mimetype"])
	}
	if !strings.Contains(files["META-INF/container.xml"], "OEBPS/content.opf") {
		t.Error("container.xml does not point at the package document")
	}

	opf := files["OEBPS/content.opf"]
	for _, want := range []string{
		`version="3.0"`, "<dc:title>My Book</dc:title>",
		"<dc:creator>A. Writer</dc:creator>", `href="nav.xhtml"`,
		`properties="nav"`, `href="toc.ncx"`, `idref="content"`,
		"dcterms:modified",
	} {
		if !strings.Contains(opf, want) {
			t.Errorf("content.opf missing %q", want)
		}
	}

	content := files["OEBPS/content.xhtml"]
	if !strings.Contains(content, `<section id="page0">`) ||
		!strings.Contains(content, `<section id="page1">`) {
		t.Errorf("content.xhtml missing page sections:\n%s", content)
	}
	if !strings.Contains(content, "Hello.") {
		t.Error("page content missing from content.xhtml")
	}

	// Cover must be a JPEG.
	cover := files["OEBPS/cover.jpg"]
	if len(cover) < 2 || cover[0] != '\xff' || cover[1] != '\xd8' {
		t.Error("cover.jpg is not a JPEG")
	}
}

func TestBuild_NavBalance(t *testing.T) {
	// Arbitrary mixes of section and page entries, including a trailing
	// section with no pages, must always yield balanced lists.
	tests := []struct {
		name  string
		types []PageType
	}{
		{"pages only", []PageType{PageTypePage, PageTypePage}},
		{"section first", []PageType{PageTypeSection, PageTypePage, PageTypePage}},
		{"page before section", []PageType{PageTypePage, PageTypeSection, PageTypePage}},
		{"ends mid-section", []PageType{PageTypeSection, PageTypePage, PageTypeSection}},
		{"adjacent sections", []PageType{PageTypeSection, PageTypeSection, PageTypePage}},
		{"empty book", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := make([]Page, len(tt.types))
			for i, typ := range tt.types {
				pages[i] = Page{Title: "T", Type: typ, Index: i}
			}

			files := buildToMap(t, Metadata{Title: "B"}, pages, nil, BuildOptions{})

			nav := files["OEBPS/nav.xhtml"]
			if opens, closes := strings.Count(nav, "<ol>"), strings.Count(nav, "</ol>"); opens != closes {
				t.Errorf("nav.xhtml has %d <ol> and %d </ol>:\n%s", opens, closes, nav)
			}
			if opens, closes := strings.Count(nav, "<li>"), strings.Count(nav, "</li>"); opens != closes {
				t.Errorf("nav.xhtml has %d <li> and %d </li>:\n%s", opens, closes, nav)
			}

			ncx := files["OEBPS/toc.ncx"]
			if opens, closes := strings.Count(ncx, "<navPoint"), strings.Count(ncx, "</navPoint>"); opens != closes {
				t.Errorf("toc.ncx has %d open and %d close navPoints:\n%s", opens, closes, ncx)
			}
		})
	}
}

func TestBuild_SectionGrouping(t *testing.T) {
	pages := []Page{
		{Title: "Part One", Type: PageTypeSection, Index: 0},
		{Title: "Inside", Type: PageTypePage, Index: 1},
		{Title: "Loose", Type: PageTypePage, Index: 2},
	}
	// Both "Inside" and "Loose" follow the section, so both nest under it.
	files := buildToMap(t, Metadata{Title: "B"}, pages, nil, BuildOptions{})

	nav := files["OEBPS/nav.xhtml"]
	partIdx := strings.Index(nav, "Part One")
	insideIdx := strings.Index(nav, "Inside")
	if partIdx < 0 || insideIdx < 0 || insideIdx < partIdx {
		t.Fatalf("section ordering wrong:\n%s", nav)
	}
	// The section entry carries a nested list.
	if strings.Count(nav, "<ol") < 2 {
		t.Errorf("expected a nested ol under the section:\n%s", nav)
	}
}

func TestBuild_ImageHandling(t *testing.T) {
	okURL := "https://cdn.test/ok.png?v=1"
	badURL := "https://cdn.test/broken.png"

	pages := []Page{{
		Title: "Pics", Type: PageTypePage, Index: 0,
		HTMLContent: `<p><img src="` + okURL + `"><img src="` + badURL + `"></p>`,
	}}
	images := []Image{
		{ID: "img1", URL: okURL, Data: []byte{0x89, 'P', 'N', 'G'}, MediaType: "image/png"},
		{ID: "img2", URL: badURL, Data: nil}, // download failed
	}

	files := buildToMap(t, Metadata{Title: "B"}, pages, images, BuildOptions{})

	if _, ok := files["OEBPS/images/img1"]; !ok {
		t.Error("bundled image missing from archive")
	}
	if _, ok := files["OEBPS/images/img2"]; ok {
		t.Error("failed image should not be in the archive")
	}

	opf := files["OEBPS/content.opf"]
	if !strings.Contains(opf, `href="images/img1"`) {
		t.Error("bundled image missing from manifest")
	}
	if strings.Contains(opf, "img2") {
		t.Error("failed image present in manifest")
	}

	content := files["OEBPS/content.xhtml"]
	if !strings.Contains(content, `src="images/img1"`) {
		t.Error("image reference not rewritten to local path")
	}
	if !strings.Contains(content, badURL) {
		t.Error("failed image reference should keep its remote URL")
	}
}

func TestBuild_RewritesMultiParamImageURL(t *testing.T) {
	url := "https://cdn.test/pic.png?a=1&b=2"
	pages := []Page{{
		Title: "Pics", Type: PageTypePage, Index: 0,
		HTMLContent: `<p><img src="` + url + `"></p>`,
	}}
	images := []Image{{ID: "img1", URL: url, Data: []byte{0xff, 0xd8}, MediaType: "image/jpeg"}}

	files := buildToMap(t, Metadata{Title: "B"}, pages, images, BuildOptions{})

	content := files["OEBPS/content.xhtml"]
	if !strings.Contains(content, `src="images/img1"`) {
		t.Errorf("multi-parameter URL not rewritten:\n%s", content)
	}
	if strings.Contains(content, "cdn.test") {
		t.Errorf("remote URL survived in content:\n%s", content)
	}
}

// stripClasses normalizes rendered HTML for the cross-path comparison.
var classAttr = regexp.MustCompile(` class="[^"]*"`)

func TestRenderPage_AuthoringPathEquivalence(t *testing.T) {
	items := []string{
		"Identify the problem",
		"Break it into parts",
		"Order the parts",
		"Solve each part",
		"Recombine the results",
	}

	legacy := "<h1>Problem breakdown procedure</h1><ol>"
	for _, it := range items {
		legacy += "<li>" + it + "</li>"
	}
	legacy += "</ol>"

	listItems := make([]*model.Node, len(items))
	for i, it := range items {
		listItems[i] = &model.Node{Type: model.NodeListItem, Content: []*model.Node{model.NewText(it)}}
	}
	doc := &model.Document{Type: "doc", Content: []*model.Node{
		model.NewHeading(1, "Problem breakdown procedure"),
		{Type: model.NodeOrderedList, Content: listItems},
	}}

	htmlPath := classAttr.ReplaceAllString(RenderPage(Page{HTMLContent: legacy, Type: PageTypePage}), "")
	docPath := classAttr.ReplaceAllString(RenderPage(Page{Content: doc, Type: PageTypePage}), "")

	for _, out := range []struct {
		name string
		html string
	}{{"legacy path", htmlPath}, {"document path", docPath}} {
		t.Run(out.name, func(t *testing.T) {
			if n := strings.Count(out.html, "<h1"); n != 1 {
				t.Errorf("h1 count = %d, want 1: %q", n, out.html)
			}
			if n := strings.Count(out.html, "<ol"); n != 1 {
				t.Errorf("ol count = %d, want 1: %q", n, out.html)
			}
			if n := strings.Count(out.html, "<li>"); n != len(items) {
				t.Errorf("li count = %d, want %d: %q", n, len(items), out.html)
			}
			for _, it := range items {
				if !strings.Contains(out.html, it) {
					t.Errorf("missing item text %q", it)
				}
			}
		})
	}
}

func TestRenderPage_Empty(t *testing.T) {
	if got := RenderPage(Page{Type: PageTypePage}); got != "" {
		t.Errorf("empty page rendered %q, want empty", got)
	}
}

func TestCover(t *testing.T) {
	for _, showText := range []bool{true, false} {
		data, err := Cover(Metadata{Title: "A Fairly Long Book Title That Wraps", Author: "Writer"}, showText)
		if err != nil {
			t.Fatalf("Cover(showText=%v) error = %v", showText, err)
		}
		if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
			t.Errorf("Cover(showText=%v) did not produce a JPEG", showText)
		}
	}
}
