package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/viewer"
)

func TestNewRouter_Health(t *testing.T) {
	srv := newTestServer(t, 0)

	rr := srv.do(t, http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := NewMockHandlerLogger()
	srv := newTestServer(t, 0)
	authService := newStubAuthService(map[string]*domain.SupabaseUser{
		"alice-token": {ID: "alice"},
		"bob-token":   {ID: "bob"},
	})
	return NewRouter(
		NewViewerHandler(srv.sessions, 0, logger),
		NewAnnotationHandler(srv.sessions, logger),
		NewAuthHandler(),
		NewAuthMiddleware(authService, logger).Middleware,
		[]string{"https://viewer.example.com"},
	)
}

func serveAs(router http.Handler, token, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestNewRouter_AuthProtectsAPI(t *testing.T) {
	router := newAuthRouter(t)

	if rr := serveAs(router, "", http.MethodPost, "/api/v1/viewers", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if rr := serveAs(router, "alice-token", http.MethodPost, "/api/v1/viewers", ""); rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}

	rr := serveAs(router, "alice-token", http.MethodGet, "/api/v1/auth/validate", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"valid":true`) {
		t.Fatalf("expected token validation, got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := serveAs(router, "", http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected open health check, got %d", rr.Code)
	}
}

func TestNewRouter_SessionsAreScopedToTheirOwner(t *testing.T) {
	router := newAuthRouter(t)

	rr := serveAs(router, "alice-token", http.MethodPost, "/api/v1/viewers", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var created sessionResponse
	decode(t, rr, &created)
	base := "/api/v1/viewers/" + created.ID

	if rr := serveAs(router, "alice-token", http.MethodPost, base+"/document", `{"url":"https://example.com/files/book.pdf"}`); rr.Code != http.StatusOK {
		t.Fatalf("expected owner to load a document, got %d: %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"read state", http.MethodGet, base, ""},
		{"navigate", http.MethodPost, base + "/actions/nextPage", ""},
		{"press key", http.MethodPost, base + "/keys", `{"key":"ArrowRight"}`},
		{"render page", http.MethodGet, base + "/pages/1/image", ""},
		{"list annotations", http.MethodGet, base + "/annotations", ""},
		{"add annotation", http.MethodPost, base + "/annotations", `{"type":"note","page_number":1,"content":"x"}`},
		{"load document", http.MethodPost, base + "/document", `{"url":"https://example.com/files/other.pdf"}`},
		{"close session", http.MethodDelete, base, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAs(router, "bob-token", tt.method, tt.path, tt.body)
			if rr.Code != http.StatusNotFound {
				t.Fatalf("expected status %d for another user, got %d: %s", http.StatusNotFound, rr.Code, rr.Body.String())
			}
		})
	}

	// The owner still sees an untouched viewer.
	rr = serveAs(router, "alice-token", http.MethodGet, base, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected owner access, got %d: %s", rr.Code, rr.Body.String())
	}
	var view viewer.View
	decode(t, rr, &view)
	if view.State.CurrentPage != 1 || view.State.NumPages != 5 {
		t.Fatalf("expected owner's viewer to be untouched, got %+v", view.State)
	}
	var annotations []domain.Annotation
	decode(t, serveAs(router, "alice-token", http.MethodGet, base+"/annotations", ""), &annotations)
	if len(annotations) != 0 {
		t.Fatalf("expected no annotations from another user, got %+v", annotations)
	}
	if rr := serveAs(router, "alice-token", http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected owner to close the session, got %d", rr.Code)
	}
}

func TestNewRouter_CORS(t *testing.T) {
	srv := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/viewers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}
