// Package model provides the canonical tree representation of page content.
//
// This package defines the user-facing data structures shared by every
// conversion target. A page is stored as a [Document]: an ordered tree of
// [Node] values tagged by [NodeType], with inline formatting carried as
// [Mark] annotations on text leaves. All renderers (HTML, plain text, SSML,
// EPUB) are pure functions of this tree, making it the primary API for
// producing published output.
//
// # Document Structure
//
// The [Document] type is the root of one page's content:
//
//	doc := model.NewDocument()
//	doc.Content = append(doc.Content, model.NewParagraph("Hello"))
//
// Only nodes of type [NodeText] carry literal text. Every other node derives
// its text from its descendants in document order.
//
// # Robustness
//
// Editor output in the wild includes documents with missing content arrays,
// unknown node types, and empty attribute objects. Every operation in this
// package is total: nil documents, nil children, and foreign node types are
// handled without error. Unknown node and mark types survive a decode/encode
// round trip unchanged.
package model
