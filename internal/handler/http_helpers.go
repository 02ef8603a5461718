package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"pdf-viewer/internal/domain"
	apperrors "pdf-viewer/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// requestOwner is the id of the authenticated caller, or "" when the API
// runs without authentication. Sessions are only visible to their owner.
func requestOwner(r *http.Request) string {
	if user, ok := GetUserFromContext(r); ok && user != nil {
		return user.ID
	}
	return ""
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error   string              `json:"error"`
	Type    apperrors.ErrorType `json:"type"`
	Details string              `json:"details,omitempty"`
}

// writeAppError maps err to a status and a typed error body. Internal
// errors are logged and their cause is not sent to the client.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	appErr := toAppError(err)
	if appErr.Type == apperrors.ErrorTypeInternal {
		logger.Error("Request failed", err)
	}
	writeJSON(w, appErr.StatusCode, errorResponse{
		Error:   appErr.Message,
		Type:    appErr.Type,
		Details: appErr.Details,
	})
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		return apperrors.NewValidationError(verr.Message, verr.Field)
	case errors.As(err, &fieldErrs):
		return apperrors.NewValidationError("invalid request body", describeFieldErrors(fieldErrs))
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrViewerClosed):
		return apperrors.NewNotFoundError("viewer session not found")
	case errors.Is(err, domain.ErrAnnotationNotFound):
		return apperrors.NewNotFoundError("annotation not found")
	case errors.Is(err, domain.ErrNoDocument):
		return apperrors.NewValidationError("no document loaded")
	case errors.Is(err, domain.ErrPageOutOfRange):
		return apperrors.NewValidationError("page out of range")
	case errors.Is(err, domain.ErrUnknownZoomLevel):
		return apperrors.NewValidationError("unknown zoom level")
	case errors.Is(err, domain.ErrDocumentTooLarge):
		e := apperrors.NewValidationError("document exceeds size limit")
		e.StatusCode = http.StatusRequestEntityTooLarge
		return e
	case errors.Is(err, domain.ErrURLNotAllowed):
		return apperrors.NewValidationError("document URL not allowed", "url")
	case errors.Is(err, domain.ErrLoadSuperseded):
		return apperrors.NewConflictError("document load superseded by a newer load", err)
	case errors.Is(err, domain.ErrInvalidDocument):
		return apperrors.NewLoadError("Failed to load PDF document", err)
	}
	return apperrors.NewInternalError("internal server error", err)
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return ""
	}
	fe := errs[0]
	return fe.Field() + " failed " + fe.Tag()
}

// decodeJSON reads and validates a JSON request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", err.Error())
	}
	return validate.Struct(dst)
}

// queryFloat parses an optional finite, non-negative query parameter;
// missing values are 0.
func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewValidationError("invalid query parameter", key)
	}
	return v, nil
}
