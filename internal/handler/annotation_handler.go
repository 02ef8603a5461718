package handler

import (
	"net/http"
	"strconv"

	"pdf-viewer/internal/domain"
	apperrors "pdf-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

// AnnotationHandler handles the annotations of a viewer session
type AnnotationHandler struct {
	sessions ViewerSessions
	logger   domain.Logger
}

// NewAnnotationHandler creates a new annotation handler
func NewAnnotationHandler(sessions ViewerSessions, logger domain.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type positionRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (p positionRequest) box() domain.BoundingBox {
	return domain.BoundingBox{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

type createAnnotationRequest struct {
	Type       string          `json:"type" validate:"required,oneof=highlight note rectangle circle arrow"`
	PageNumber int             `json:"page_number" validate:"required,gte=1"`
	Position   positionRequest `json:"position"`
	Content    string          `json:"content" validate:"max=10000"`
	Color      string          `json:"color" validate:"omitempty,hexcolor"`
	Author     string          `json:"author" validate:"max=255"`
}

type updateAnnotationRequest struct {
	Position positionRequest `json:"position"`
	Content  string          `json:"content" validate:"max=10000"`
	Color    string          `json:"color" validate:"omitempty,hexcolor"`
}

// ListAnnotations returns the session's annotations, optionally for one ?page=.
func (h *AnnotationHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	raw := r.URL.Query().Get("page")
	if raw == "" {
		writeJSON(w, http.StatusOK, sess.Viewer.Annotations())
		return
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		writeAppError(w, h.logger, apperrors.NewValidationError("invalid page number", "page"))
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.AnnotationsForPage(page))
}

// CreateAnnotation adds an annotation to a page of the loaded document
func (h *AnnotationHandler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	var req createAnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	annotation, err := sess.Viewer.AddAnnotation(domain.NewAnnotation{
		Type:       domain.AnnotationType(req.Type),
		PageNumber: req.PageNumber,
		Position:   req.Position.box(),
		Content:    req.Content,
		Color:      req.Color,
		Author:     req.Author,
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	h.logger.Debug("Annotation created", "session_id", sess.ID, "annotation_id", annotation.ID)
	writeJSON(w, http.StatusCreated, annotation)
}

// GetAnnotation returns one annotation
func (h *AnnotationHandler) GetAnnotation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessions.Get(vars["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	annotation, ok := sess.Viewer.Annotation(vars["annotationId"])
	if !ok {
		writeAppError(w, h.logger, domain.ErrAnnotationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, annotation)
}

// UpdateAnnotation changes the content, position and color of an annotation
func (h *AnnotationHandler) UpdateAnnotation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessions.Get(vars["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	var req updateAnnotationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	annotation, err := sess.Viewer.UpdateAnnotation(domain.Annotation{
		ID:       vars["annotationId"],
		Position: req.Position.box(),
		Content:  req.Content,
		Color:    req.Color,
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, annotation)
}

// DeleteAnnotation removes an annotation
func (h *AnnotationHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := h.sessions.Get(vars["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	if err := sess.Viewer.DeleteAnnotation(vars["annotationId"]); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
