package domain

import "context"

// DocumentRef points at a document to open: either raw bytes or a URL.
type DocumentRef struct {
	Name string
	Data []byte
	URL  string
}

// Document is an opened document. Handle identifies it for the
// collaborators that work on its contents.
type Document struct {
	Handle  string
	Data    []byte
	Info    DocumentInfo
	Outline []OutlineItem
}

// RenderRequest asks for one page at a given scale and rotation.
type RenderRequest struct {
	PageNumber int
	Scale      float64
	Rotation   int
}

// RenderedPage is an encoded page image.
type RenderedPage struct {
	PageNumber  int
	Width       int
	Height      int
	ContentType string
	Data        []byte
}

// DocumentSource opens documents and reports their page count and metadata.
type DocumentSource interface {
	Open(ctx context.Context, ref DocumentRef) (*Document, error)
}

// PageRenderer produces a renderable surface for a single page. Failures
// are per page and do not affect the rest of the document.
type PageRenderer interface {
	RenderPage(ctx context.Context, doc *Document, req RenderRequest) (*RenderedPage, error)
}

// TextSearcher finds the occurrences of a term in a document, in reading order.
type TextSearcher interface {
	Search(ctx context.Context, doc *Document, term string) ([]SearchResult, error)
}
