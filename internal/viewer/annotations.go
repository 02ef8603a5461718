package viewer

import (
	"time"

	"pdf-viewer/internal/domain"

	"github.com/google/uuid"
)

// DefaultAnnotationColor is used when an annotation is added without one.
const DefaultAnnotationColor = "#ffd400"

// AnnotationStore owns the annotations of one viewer, in insertion order.
// Nothing is persisted; the collection lives as long as the process.
//
// The store is not safe for concurrent use; the Viewer serialises access.
type AnnotationStore struct {
	items []domain.Annotation
	newID func() string
	now   func() time.Time
}

// NewAnnotationStore creates an empty store. Nil generators fall back to
// random UUIDs and the wall clock.
func NewAnnotationStore(newID func() string, now func() time.Time) *AnnotationStore {
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	if now == nil {
		now = time.Now
	}
	return &AnnotationStore{newID: newID, now: now}
}

// Add stores a new annotation with a fresh id and returns it.
func (s *AnnotationStore) Add(in domain.NewAnnotation) (domain.Annotation, error) {
	if err := in.Validate(); err != nil {
		return domain.Annotation{}, err
	}
	color := in.Color
	if color == "" {
		color = DefaultAnnotationColor
	}
	ts := s.now()
	a := domain.Annotation{
		ID:         s.newID(),
		Type:       in.Type,
		PageNumber: in.PageNumber,
		Position:   in.Position,
		Content:    in.Content,
		Color:      color,
		Author:     in.Author,
		CreatedAt:  ts,
		ModifiedAt: ts,
	}
	s.items = append(s.items, a)
	return a, nil
}

// Update replaces content, position and color of the annotation with a.ID.
// Other fields of a are ignored.
func (s *AnnotationStore) Update(a domain.Annotation) (domain.Annotation, error) {
	i := s.indexOf(a.ID)
	if i < 0 {
		return domain.Annotation{}, domain.ErrAnnotationNotFound
	}
	if a.Position.Width < 0 || a.Position.Height < 0 {
		return domain.Annotation{}, &domain.ValidationError{Field: "position", Message: "position size cannot be negative"}
	}

	cur := s.items[i]
	cur.Content = a.Content
	cur.Position = a.Position
	if a.Color != "" {
		cur.Color = a.Color
	}
	cur.ModifiedAt = s.now()
	s.items[i] = cur
	return cur, nil
}

// Delete removes the annotation with id.
func (s *AnnotationStore) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrAnnotationNotFound
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

// Get returns the annotation with id.
func (s *AnnotationStore) Get(id string) (domain.Annotation, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Annotation{}, false
	}
	return s.items[i], true
}

// List returns a copy of every annotation.
func (s *AnnotationStore) List() []domain.Annotation {
	out := make([]domain.Annotation, len(s.items))
	copy(out, s.items)
	return out
}

// ListForPage returns the annotations of one page in insertion order.
func (s *AnnotationStore) ListForPage(pageNumber int) []domain.Annotation {
	out := []domain.Annotation{}
	for _, a := range s.items {
		if a.PageNumber == pageNumber {
			out = append(out, a)
		}
	}
	return out
}

// Clear drops every annotation.
func (s *AnnotationStore) Clear() {
	s.items = nil
}

// Len is the number of stored annotations.
func (s *AnnotationStore) Len() int {
	return len(s.items)
}

func (s *AnnotationStore) indexOf(id string) int {
	for i, a := range s.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}
