package domain

import "time"

// AnnotationType is the kind of mark drawn on a page.
type AnnotationType string

const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationNote      AnnotationType = "note"
	AnnotationRectangle AnnotationType = "rectangle"
	AnnotationCircle    AnnotationType = "circle"
	AnnotationArrow     AnnotationType = "arrow"
)

// Valid reports whether t is one of the known annotation types.
func (t AnnotationType) Valid() bool {
	switch t {
	case AnnotationHighlight, AnnotationNote, AnnotationRectangle, AnnotationCircle, AnnotationArrow:
		return true
	}
	return false
}

// Annotation is a page-scoped mark owned by a viewer's annotation store.
// ID, PageNumber and CreatedAt never change after creation.
type Annotation struct {
	ID         string         `json:"id"`
	Type       AnnotationType `json:"type"`
	PageNumber int            `json:"page_number"`
	Position   BoundingBox    `json:"position"`
	Content    string         `json:"content,omitempty"`
	Color      string         `json:"color"`
	Author     string         `json:"author,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// NewAnnotation carries the caller-supplied fields of an annotation; the
// store assigns the id and timestamps.
type NewAnnotation struct {
	Type       AnnotationType `json:"type"`
	PageNumber int            `json:"page_number"`
	Position   BoundingBox    `json:"position"`
	Content    string         `json:"content,omitempty"`
	Color      string         `json:"color"`
	Author     string         `json:"author,omitempty"`
}

// Validate checks the fields that do not depend on the loaded document.
func (a NewAnnotation) Validate() error {
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Message: "unknown annotation type"}
	}
	if a.PageNumber < 1 {
		return &ValidationError{Field: "page_number", Message: "page number must be positive"}
	}
	return validatePosition(a.Position)
}

func validatePosition(p BoundingBox) error {
	if p.Width < 0 || p.Height < 0 {
		return &ValidationError{Field: "position", Message: "position size cannot be negative"}
	}
	return nil
}
