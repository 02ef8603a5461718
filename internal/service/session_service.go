package service

import (
	"context"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/viewer"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTTL     = 60 * time.Minute
	sessionCleanupDivisor = 4
)

// Session is one viewer owned by one client. OwnerID is the authenticated
// user that created it, empty when the API runs without authentication.
type Session struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id,omitempty"`
	Viewer    *viewer.Viewer `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionOptions configures the viewers a SessionService creates.
type SessionOptions struct {
	TTL         time.Duration
	SearchDelay time.Duration
}

// forgetter is implemented by searchers that cache per-document data.
type forgetter interface {
	Forget(handle string)
}

// SessionService keeps viewers in memory. Idle sessions expire after the
// TTL and their viewer is closed on the way out.
type SessionService struct {
	sessions *cache.Cache
	source   domain.DocumentSource
	searcher domain.TextSearcher
	renderer domain.PageRenderer
	opts     SessionOptions
	logger   domain.Logger
}

// NewSessionService creates an empty session store.
func NewSessionService(
	source domain.DocumentSource,
	searcher domain.TextSearcher,
	renderer domain.PageRenderer,
	opts SessionOptions,
	logger domain.Logger,
) *SessionService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = viewer.DefaultSearchDelay
	}

	s := &SessionService{
		sessions: cache.New(opts.TTL, opts.TTL/sessionCleanupDivisor),
		source:   source,
		searcher: searcher,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}
	s.sessions.OnEvicted(s.evicted)
	return s
}

func (s *SessionService) evicted(id string, value interface{}) {
	sess, ok := value.(*Session)
	if !ok {
		return
	}
	if doc := sess.Viewer.Document(); doc != nil {
		if f, ok := s.searcher.(forgetter); ok {
			f.Forget(doc.Handle)
		}
	}
	sess.Viewer.Close()
	s.logger.Info("Viewer session closed", "session_id", id)
}

// Create starts a session with an empty viewer for ownerID.
func (s *SessionService) Create(ownerID string) (*Session, error) {
	v, err := viewer.New(s.source, s.searcher, s.logger, viewer.WithSearchDelay(s.opts.SearchDelay))
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Viewer:    v,
		CreatedAt: time.Now().UTC(),
	}
	s.sessions.Set(sess.ID, sess, cache.DefaultExpiration)
	s.logger.Info("Viewer session created", "session_id", sess.ID, "owner_id", ownerID)
	return sess, nil
}

// Get returns a live session of ownerID and extends its lifetime. Another
// owner's session is reported as not found.
func (s *SessionService) Get(id, ownerID string) (*Session, error) {
	sess, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	s.sessions.Set(id, sess, cache.DefaultExpiration)
	return sess, nil
}

// Delete closes a session of ownerID.
func (s *SessionService) Delete(id, ownerID string) error {
	if _, err := s.lookup(id, ownerID); err != nil {
		return err
	}
	s.sessions.Delete(id)
	return nil
}

func (s *SessionService) lookup(id, ownerID string) (*Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess := v.(*Session)
	if sess.OwnerID != ownerID {
		s.logger.Warn("Viewer session requested by another user", "session_id", id, "owner_id", ownerID)
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Count is the number of live sessions.
func (s *SessionService) Count() int {
	return s.sessions.ItemCount()
}

// RenderPage draws a page of the session's document with the session's
// current zoom and rotation. vp is the client's page area; it resolves
// the fit modes.
func (s *SessionService) RenderPage(ctx context.Context, id, ownerID string, pageNumber int, vp viewer.Viewport) (*domain.RenderedPage, error) {
	sess, err := s.Get(id, ownerID)
	if err != nil {
		return nil, err
	}
	doc := sess.Viewer.Document()
	if doc == nil {
		return nil, domain.ErrNoDocument
	}
	state := sess.Viewer.State()
	return s.renderer.RenderPage(ctx, doc, domain.RenderRequest{
		PageNumber: pageNumber,
		Scale:      viewer.EffectiveScale(state, vp),
		Rotation:   state.Rotation,
	})
}

// Close ends every session.
func (s *SessionService) Close() {
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}
