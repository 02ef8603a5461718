package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/service"
)

type stubSource struct{}

func (stubSource) Open(ctx context.Context, ref domain.DocumentRef) (*domain.Document, error) {
	if ref.Name == "broken.pdf" {
		return nil, fmt.Errorf("%w: bad xref table", domain.ErrInvalidDocument)
	}
	return &domain.Document{
		Handle:  "doc-" + ref.Name,
		Data:    ref.Data,
		Info:    domain.DocumentInfo{Name: ref.Name, NumPages: 5, Title: "Stub"},
		Outline: []domain.OutlineItem{
			{Title: "Intro", PageNumber: 1, Level: 0},
			{Title: "Chapter 1", PageNumber: 4, Level: 0},
		},
	}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, doc *domain.Document, term string) ([]domain.SearchResult, error) {
	if term != "found" {
		return []domain.SearchResult{}, nil
	}
	return []domain.SearchResult{
		{PageNumber: 2, TextContent: "found", MatchIndex: 0},
		{PageNumber: 4, TextContent: "found", MatchIndex: 1},
	}, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderPage(ctx context.Context, doc *domain.Document, req domain.RenderRequest) (*domain.RenderedPage, error) {
	if req.PageNumber < 1 || req.PageNumber > doc.Info.NumPages {
		return nil, domain.ErrPageOutOfRange
	}
	if req.PageNumber == 3 {
		return nil, errors.New("broken content stream")
	}
	return &domain.RenderedPage{
		PageNumber:  req.PageNumber,
		Width:       int(600 * req.Scale),
		Height:      int(800 * req.Scale),
		ContentType: "image/png",
		Data:        []byte(fmt.Sprintf("png scale=%.2f rotation=%d", req.Scale, req.Rotation)),
	}, nil
}

type testServer struct {
	handler  http.Handler
	sessions *service.SessionService
}

func newTestServer(t *testing.T, maxFileSize int64) *testServer {
	t.Helper()
	logger := NewMockHandlerLogger()
	sessions := service.NewSessionService(stubSource{}, stubSearcher{}, stubRenderer{},
		service.SessionOptions{SearchDelay: time.Millisecond}, logger)
	t.Cleanup(sessions.Close)

	router := NewRouter(
		NewViewerHandler(sessions, maxFileSize, logger),
		NewAnnotationHandler(sessions, logger),
		nil,
		nil,
		nil,
	)
	return &testServer{handler: router, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/viewers", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var resp sessionResponse
	decode(t, rr, &resp)
	return resp.ID
}

func (s *testServer) loadDocument(t *testing.T, id string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/viewers/"+id+"/document", `{"url":"https://example.com/files/book.pdf"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}
