// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/service"
	"pdf-viewer/internal/viewer"
	apperrors "pdf-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

// multipartOverhead is the room left for form boundaries and headers on
// top of the document size limit.
const multipartOverhead = 1 << 20

// ViewerSessions is the session store the viewer endpoints work against.
type ViewerSessions interface {
	Create(ownerID string) (*service.Session, error)
	Get(id, ownerID string) (*service.Session, error)
	Delete(id, ownerID string) error
	RenderPage(ctx context.Context, id, ownerID string, pageNumber int, vp viewer.Viewport) (*domain.RenderedPage, error)
}

// ViewerHandler exposes viewer sessions over HTTP.
type ViewerHandler struct {
	sessions    ViewerSessions
	maxFileSize int64
	logger      domain.Logger
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(sessions ViewerSessions, maxFileSize int64, logger domain.Logger) *ViewerHandler {
	return &ViewerHandler{
		sessions:    sessions,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

type sessionResponse struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	State     domain.ViewerState `json:"state"`
}

type loadURLRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name" validate:"max=255"`
}

type actionRequest struct {
	Page  *int                `json:"page"`
	Scale *float64            `json:"scale"`
	Term  *string             `json:"term"`
	Label string              `json:"label"`
	Item  *domain.OutlineItem `json:"item"`
}

type keyRequest struct {
	Key      string             `json:"key" validate:"required,max=32"`
	CtrlKey  bool               `json:"ctrl_key"`
	ShiftKey bool               `json:"shift_key"`
	AltKey   bool               `json:"alt_key"`
	Target   domain.EventTarget `json:"target"`
}

type keyResponse struct {
	Handled bool        `json:"handled"`
	View    viewer.View `json:"view"`
}

type pagesResponse struct {
	NumPages int   `json:"num_pages"`
	Pages    []int `json:"pages"`
}

type fitScaleResponse struct {
	Scale     float64        `json:"scale"`
	FitMode   domain.FitMode `json:"fit_mode"`
	ZoomLabel string         `json:"zoom_label"`
}

type viewerAction func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error)

var viewerActions = map[string]viewerAction{
	"goToPage": func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error) {
		if req.Page == nil {
			return domain.ViewerState{}, apperrors.NewValidationError("page is required", "page")
		}
		return v.GoToPage(*req.Page), nil
	},
	"nextPage":     simpleAction((*viewer.Viewer).NextPage),
	"previousPage": simpleAction((*viewer.Viewer).PreviousPage),
	"setZoom": func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error) {
		if req.Scale == nil {
			return domain.ViewerState{}, apperrors.NewValidationError("scale is required", "scale")
		}
		return v.SetZoom(*req.Scale), nil
	},
	"zoomIn":     simpleAction((*viewer.Viewer).ZoomIn),
	"zoomOut":    simpleAction((*viewer.Viewer).ZoomOut),
	"fitToWidth": simpleAction((*viewer.Viewer).FitToWidth),
	"fitToPage":  simpleAction((*viewer.Viewer).FitToPage),
	"applyZoomLevel": func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error) {
		if req.Label == "" {
			return domain.ViewerState{}, apperrors.NewValidationError("label is required", "label")
		}
		return v.ApplyZoomLevel(req.Label)
	},
	"rotateClockwise":        simpleAction((*viewer.Viewer).RotateClockwise),
	"rotateCounterClockwise": simpleAction((*viewer.Viewer).RotateCounterClockwise),
	"toggleThumbnails":       simpleAction((*viewer.Viewer).ToggleThumbnails),
	"toggleOutline":          simpleAction((*viewer.Viewer).ToggleOutline),
	"toggleTheme":            simpleAction((*viewer.Viewer).ToggleTheme),
	"search": func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error) {
		if req.Term == nil {
			return domain.ViewerState{}, apperrors.NewValidationError("term is required", "term")
		}
		return v.Search(*req.Term), nil
	},
	"nextSearchResult":     simpleAction((*viewer.Viewer).NextSearchResult),
	"previousSearchResult": simpleAction((*viewer.Viewer).PreviousSearchResult),
	"goToOutlineItem": func(v *viewer.Viewer, req actionRequest) (domain.ViewerState, error) {
		if req.Item == nil {
			return domain.ViewerState{}, apperrors.NewValidationError("item is required", "item")
		}
		return v.GoToOutlineItem(*req.Item), nil
	},
}

func simpleAction(fn func(*viewer.Viewer) domain.ViewerState) viewerAction {
	return func(v *viewer.Viewer, _ actionRequest) (domain.ViewerState, error) {
		return fn(v), nil
	}
}

// CreateSession handles starting a new viewer
func (h *ViewerHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		State:     sess.Viewer.State(),
	})
}

// GetSession returns the current view of a viewer
func (h *ViewerHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.View())
}

// DeleteSession closes a viewer
func (h *ViewerHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"], requestOwner(r)); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDocument opens a document from a multipart upload or a JSON URL body.
func (h *ViewerHandler) LoadDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	ref, err := h.documentRef(w, r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	if _, err := sess.Viewer.LoadDocument(r.Context(), ref); err != nil {
		writeAppError(w, h.logger, loadError(err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.View())
}

func (h *ViewerHandler) documentRef(w http.ResponseWriter, r *http.Request) (domain.DocumentRef, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.uploadedRef(w, r)
	}

	var req loadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		return domain.DocumentRef{}, err
	}
	name := req.Name
	if name == "" {
		name = filepath.Base(req.URL)
	}
	return domain.DocumentRef{Name: name, URL: req.URL}, nil
}

func (h *ViewerHandler) uploadedRef(w http.ResponseWriter, r *http.Request) (domain.DocumentRef, error) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.DocumentRef{}, domain.ErrDocumentTooLarge
		}
		return domain.DocumentRef{}, apperrors.NewValidationError("invalid multipart form", err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.DocumentRef{}, apperrors.NewValidationError("file is required", "file")
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		return domain.DocumentRef{}, apperrors.NewValidationError("only PDF files are supported", "file")
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		return domain.DocumentRef{}, domain.ErrDocumentTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.DocumentRef{}, apperrors.NewValidationError("failed to read file", err.Error())
	}
	return domain.DocumentRef{Name: header.Filename, Data: data}, nil
}

// loadError keeps the sentinel errors with their own status and reports
// every other failure as a document that could not be loaded.
func loadError(err error) error {
	switch {
	case errors.Is(err, domain.ErrLoadSuperseded),
		errors.Is(err, domain.ErrViewerClosed),
		errors.Is(err, domain.ErrDocumentTooLarge),
		errors.Is(err, domain.ErrURLNotAllowed):
		return err
	}
	return apperrors.NewLoadError(viewer.LoadErrorMessage, err)
}

// Action runs one named viewer action and returns the resulting view.
func (h *ViewerHandler) Action(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["action"]
	action, ok := viewerActions[name]
	if !ok {
		writeAppError(w, h.logger, apperrors.NewNotFoundError("unknown action: "+name))
		return
	}

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeAppError(w, h.logger, err)
			return
		}
	}

	if _, err := action(sess.Viewer, req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.View())
}

// HandleKey forwards a key press to the viewer's shortcut dispatcher.
func (h *ViewerHandler) HandleKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	handled := sess.Viewer.HandleKey(domain.KeyEvent{
		Key:      req.Key,
		CtrlKey:  req.CtrlKey,
		ShiftKey: req.ShiftKey,
		AltKey:   req.AltKey,
		Target:   req.Target,
	})
	writeJSON(w, http.StatusOK, keyResponse{Handled: handled, View: sess.Viewer.View()})
}

// GetOutline returns the table of contents of the loaded document.
func (h *ViewerHandler) GetOutline(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.Outline())
}

// GetPages lists the thumbnail pages, optionally narrowed by ?filter=.
func (h *ViewerHandler) GetPages(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	numPages := sess.Viewer.State().NumPages
	writeJSON(w, http.StatusOK, pagesResponse{
		NumPages: numPages,
		Pages:    viewer.FilterPages(numPages, r.URL.Query().Get("filter")),
	})
}

// GetPageImage renders one page as PNG with the viewer's zoom and rotation.
func (h *ViewerHandler) GetPageImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		writeAppError(w, h.logger, apperrors.NewValidationError("invalid page number", "page"))
		return
	}
	vp, err := viewportFromQuery(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	rendered, err := h.sessions.RenderPage(r.Context(), vars["id"], requestOwner(r), page, vp)
	if err != nil {
		writeAppError(w, h.logger, renderError(page, err))
		return
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Data)
}

func renderError(page int, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNoDocument),
		errors.Is(err, domain.ErrPageOutOfRange),
		errors.Is(err, context.Canceled):
		return err
	}
	return apperrors.NewRenderError(page, err)
}

// GetFitScale reports the scale the viewer renders at inside ?width=&height=.
func (h *ViewerHandler) GetFitScale(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	vp, err := viewportFromQuery(r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	state := sess.Viewer.State()
	writeJSON(w, http.StatusOK, fitScaleResponse{
		Scale:     viewer.EffectiveScale(state, vp),
		FitMode:   state.FitMode,
		ZoomLabel: viewer.ZoomLabel(state),
	})
}

// GetShortcuts returns the keymap of a viewer.
func (h *ViewerHandler) GetShortcuts(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Viewer.Shortcuts())
}

// GetZoomLevels returns the toolbar zoom selector entries.
func (h *ViewerHandler) GetZoomLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewer.ZoomLevels)
}

func (h *ViewerHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"], requestOwner(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return nil, false
	}
	return sess, true
}

func viewportFromQuery(r *http.Request) (viewer.Viewport, error) {
	width, err := queryFloat(r, "width")
	if err != nil {
		return viewer.Viewport{}, err
	}
	height, err := queryFloat(r, "height")
	if err != nil {
		return viewer.Viewport{}, err
	}
	return viewer.Viewport{Width: width, Height: height}, nil
}
