package supabase

import (
	"fmt"
	"time"

	"pdf-viewer/internal/domain"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// userLookup resolves an access token to its GoTrue user.
type userLookup func(token string) (*types.UserResponse, error)

// SupabaseClient verifies the bearer tokens of API callers against
// Supabase Auth. The user id it returns owns the caller's viewer sessions.
type SupabaseClient struct {
	client *supabase.Client
	lookup userLookup
	config domain.Config
	logger domain.Logger
}

// NewSupabaseClient creates a client; Initialize connects it.
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return &SupabaseClient{
		config: config,
		logger: logger,
	}
}

func (s *SupabaseClient) DB() *supabase.Client {
	return s.client
}

// Initialize connects to the project named by SUPABASE_URL.
func (s *SupabaseClient) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	// Headers set on the Supabase client do not reach GoTrue, so every
	// lookup binds a fresh auth client to the caller's token.
	s.lookup = func(token string) (*types.UserResponse, error) {
		return client.Auth.WithToken(token).GetUser()
	}
	s.logger.Info("Supabase client initialized successfully", "url", supabaseURL)
	return nil
}

// ValidateToken returns the user an access token belongs to. A token that
// resolves to no user, or to a user without an id, is rejected: an empty
// owner would match the sessions of unauthenticated deployments.
func (s *SupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if s.lookup == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	resp, err := s.lookup(token)
	if err != nil {
		s.logger.Debug("Supabase rejected token", "error", err.Error())
		return nil, err
	}
	if resp == nil || resp.ID == uuid.Nil {
		return nil, domain.ErrUserNotFound
	}
	if resp.BannedUntil != nil && resp.BannedUntil.After(time.Now()) {
		return nil, fmt.Errorf("%w: user banned until %s", domain.ErrInvalidToken, resp.BannedUntil.Format(time.RFC3339))
	}
	return toDomainUser(resp.User), nil
}

func toDomainUser(u types.User) *domain.SupabaseUser {
	return &domain.SupabaseUser{
		ID:           u.ID.String(),
		Email:        u.Email,
		UserMetadata: u.UserMetadata,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
