package epub

import (
	"regexp"
	"sort"
)

// RewriteImageURLs replaces remote image references in rendered HTML with
// local container paths, using the URL-to-ID map built from the image
// download pass. Each URL is regexp-quoted before the pattern is built,
// since URLs routinely contain '.', '+', and '?'. The input has already been
// through the XHTML sanitizer, so '&' in a URL appears as '&amp;' in the
// attribute text; both the raw and the attribute-escaped spellings are
// matched. URLs absent from the map are left untouched, so a failed download
// degrades to a remote reference instead of a broken export.
func RewriteImageURLs(src string, urlToID map[string]string) string {
	if src == "" || len(urlToID) == 0 {
		return src
	}

	// Deterministic application order.
	urls := make([]string, 0, len(urlToID))
	for u := range urlToID {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	for _, u := range urls {
		forms := []string{u}
		if escaped := escapeXHTMLAttr(u); escaped != u {
			forms = append(forms, escaped)
		}
		for _, form := range forms {
			re, err := regexp.Compile(`(src=["'])` + regexp.QuoteMeta(form) + `(["'])`)
			if err != nil {
				continue
			}
			src = re.ReplaceAllString(src, `${1}images/`+urlToID[u]+`${2}`)
		}
	}
	return src
}

// imagePath returns the container path for a bundled image.
func imagePath(id string) string { return "images/" + id }
