package config

import (
	"fmt"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/infra/supabase"
	"pdf-viewer/internal/service"
	"pdf-viewer/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	DocumentSource *service.PDFDocumentSource
	TextSearcher   *service.PDFTextSearcher
	PageRenderer   *service.FitzPageRenderer
	SessionService *service.SessionService

	// Nil when Supabase is not configured; the API is then open.
	SupabaseClient domain.SupabaseClient
	AuthService    domain.AuthService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel(), cfg.GetLogFile())
	return newContainer(cfg, appLogger)
}

func newContainer(cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	source := service.NewPDFDocumentSource(service.SourceOptions{
		MaxFileSize:       cfg.GetMaxFileSize(),
		FetchTimeout:      cfg.GetFetchTimeout(),
		AllowPrivateHosts: cfg.GetAllowPrivateFetch(),
	}, appLogger)
	searcher := service.NewPDFTextSearcher(appLogger)
	renderer := service.NewFitzPageRenderer(cfg.GetRenderDPI(), appLogger)

	sessions := service.NewSessionService(source, searcher, renderer, service.SessionOptions{
		TTL:         cfg.GetSessionTTL(),
		SearchDelay: cfg.GetSearchDebounce(),
	}, appLogger)

	c := &Container{
		Config:         cfg,
		Logger:         appLogger,
		DocumentSource: source,
		TextSearcher:   searcher,
		PageRenderer:   renderer,
		SessionService: sessions,
	}

	if cfg.GetSupabaseURL() == "" && cfg.GetSupabaseKey() == "" {
		appLogger.Warn("Supabase not configured, API authentication disabled")
		return c, nil
	}

	// Initialize Supabase client
	supabaseClient := supabase.NewSupabaseClient(cfg, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		sessions.Close()
		return nil, fmt.Errorf("initialize supabase: %w", err)
	}
	c.SupabaseClient = supabaseClient
	c.AuthService = service.NewAuthService(supabaseClient, appLogger)
	return c, nil
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (c *Container) AuthEnabled() bool {
	return c.AuthService != nil
}

// Close releases every viewer session.
func (c *Container) Close() {
	c.SessionService.Close()
}
