package domain

import "errors"

// Domain errors
var (
	ErrNoDocument         = errors.New("no document loaded")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrDocumentTooLarge   = errors.New("document exceeds size limit")
	ErrURLNotAllowed      = errors.New("document URL not allowed")
	ErrLoadSuperseded     = errors.New("document load superseded by a newer load")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrSessionNotFound    = errors.New("viewer session not found")
	ErrViewerClosed       = errors.New("viewer closed")
	ErrDuplicateShortcut  = errors.New("duplicate keyboard shortcut")
	ErrInvalidShortcut    = errors.New("invalid keyboard shortcut")
	ErrUnknownZoomLevel   = errors.New("unknown zoom level")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
