// Package epub packages a book's pages into an EPUB 3 container.
//
// [Build] writes the complete archive: a stored (uncompressed) mimetype as
// the first entry, META-INF/container.xml, and an OEBPS directory holding
// the package document (content.opf), two parallel tables of contents
// (nav.xhtml for EPUB 3 readers, toc.ncx for older ones), a single
// content.xhtml with one <section> per page, a stylesheet, bundled images,
// and an optional generated cover.
//
// Page HTML passes through [SanitizeXHTML] before inclusion, which makes
// editor-rendered and legacy-authored HTML meet the same strict XHTML bar:
// void elements self-closed, scripts and comments gone, named entities
// rewritten to numeric form.
package epub
