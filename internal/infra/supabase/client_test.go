package supabase

import (
	"errors"
	"testing"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/pkg/logger"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

func clientWithUsers(users map[string]*types.UserResponse) *SupabaseClient {
	return &SupabaseClient{
		logger: logger.NewNop(),
		lookup: func(token string) (*types.UserResponse, error) {
			resp, ok := users[token]
			if !ok {
				return nil, errors.New("response status code 401: invalid JWT")
			}
			return resp, nil
		},
	}
}

func TestSupabaseClient_ValidateToken(t *testing.T) {
	id := uuid.MustParse("6f1c2d4e-8a7b-4c3d-9e0f-1a2b3c4d5e6f")
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	later := time.Now().Add(time.Hour)
	earlier := time.Now().Add(-time.Hour)

	client := clientWithUsers(map[string]*types.UserResponse{
		"reader": {User: types.User{
			ID:           id,
			Email:        "reader@example.com",
			UserMetadata: map[string]interface{}{"name": "Reader"},
			CreatedAt:    created,
			UpdatedAt:    created,
		}},
		"pardoned": {User: types.User{ID: id, BannedUntil: &earlier}},
		"banned":   {User: types.User{ID: id, BannedUntil: &later}},
		"nobody":   {},
		"missing":  nil,
	})

	user, err := client.ValidateToken("reader")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != id.String() || user.Email != "reader@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.CreatedAt != "2024-03-01T08:30:00Z" {
		t.Fatalf("expected UTC RFC3339 timestamp, got %s", user.CreatedAt)
	}
	if user.UserMetadata["name"] != "Reader" {
		t.Fatalf("expected metadata to be carried, got %v", user.UserMetadata)
	}

	if _, err := client.ValidateToken("pardoned"); err != nil {
		t.Fatalf("expected an expired ban to be ignored, got %v", err)
	}

	tests := []struct {
		token   string
		wantErr error
	}{
		{"banned", domain.ErrInvalidToken},
		{"nobody", domain.ErrUserNotFound},
		{"missing", domain.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if _, err := client.ValidateToken(tt.token); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := client.ValidateToken("forged"); err == nil {
		t.Fatal("expected an unknown token to be rejected")
	}
}

func TestSupabaseClient_NotInitialized(t *testing.T) {
	client := &SupabaseClient{logger: logger.NewNop()}
	if _, err := client.ValidateToken("reader"); err == nil {
		t.Fatal("expected an error before Initialize")
	}
}
