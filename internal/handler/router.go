package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173", // SvelteKit dev server
	"http://localhost:4173", // SvelteKit preview
	"http://localhost:3000", // Alternative dev port
}

// NewRouter creates a new HTTP router with all routes configured. When
// authMiddleware is nil the API is served without authentication.
func NewRouter(
	viewerHandler *ViewerHandler,
	annotationHandler *AnnotationHandler,
	authHandler *AuthHandler,
	authMiddleware func(http.Handler) http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-viewer"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	if authMiddleware != nil {
		api.Use(authMiddleware)
		if authHandler != nil {
			api.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
			api.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods("GET")
		}
	}

	api.HandleFunc("/zoom-levels", viewerHandler.GetZoomLevels).Methods("GET")

	// Viewer session routes
	api.HandleFunc("/viewers", viewerHandler.CreateSession).Methods("POST")
	api.HandleFunc("/viewers/{id}", viewerHandler.GetSession).Methods("GET")
	api.HandleFunc("/viewers/{id}", viewerHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/viewers/{id}/document", viewerHandler.LoadDocument).Methods("POST")
	api.HandleFunc("/viewers/{id}/actions/{action}", viewerHandler.Action).Methods("POST")
	api.HandleFunc("/viewers/{id}/keys", viewerHandler.HandleKey).Methods("POST")
	api.HandleFunc("/viewers/{id}/outline", viewerHandler.GetOutline).Methods("GET")
	api.HandleFunc("/viewers/{id}/pages", viewerHandler.GetPages).Methods("GET")
	api.HandleFunc("/viewers/{id}/pages/{page}/image", viewerHandler.GetPageImage).Methods("GET")
	api.HandleFunc("/viewers/{id}/fit-scale", viewerHandler.GetFitScale).Methods("GET")
	api.HandleFunc("/viewers/{id}/shortcuts", viewerHandler.GetShortcuts).Methods("GET")

	// Annotation routes
	api.HandleFunc("/viewers/{id}/annotations", annotationHandler.ListAnnotations).Methods("GET")
	api.HandleFunc("/viewers/{id}/annotations", annotationHandler.CreateAnnotation).Methods("POST")
	api.HandleFunc("/viewers/{id}/annotations/{annotationId}", annotationHandler.GetAnnotation).Methods("GET")
	api.HandleFunc("/viewers/{id}/annotations/{annotationId}", annotationHandler.UpdateAnnotation).Methods("PUT")
	api.HandleFunc("/viewers/{id}/annotations/{annotationId}", annotationHandler.DeleteAnnotation).Methods("DELETE")

	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultAllowedOrigins
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
