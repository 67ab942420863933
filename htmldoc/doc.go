// Package htmldoc converts between the document model and HTML.
//
// [Render] is the forward direction: a deterministic document-to-HTML
// serialization used for editor display, EPUB content, and previews.
// [Parse] is the best-effort inverse, used only for converting legacy
// HTML-authored content at rest; it always yields a valid document but does
// not promise a byte-for-byte round trip with Render.
//
// Both directions are total. Render of a nil or malformed document returns
// "" (logging the failure) rather than panicking, and Parse of unparseable
// input returns an empty document rather than nil.
package htmldoc
