package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pdf-viewer/internal/domain"
	"pdf-viewer/pkg/logger"

	"github.com/stretchr/testify/require"
)

// fakeScheduler records deferred calls so tests decide when they fire.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Pending counts timers that have neither fired nor been stopped.
func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// Fire runs every live timer, in creation order.
func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	timers := append([]*fakeTimer(nil), s.timers...)
	s.mu.Unlock()
	for _, t := range timers {
		t.mu.Lock()
		live := !t.stopped
		t.stopped = true
		t.mu.Unlock()
		if live {
			t.f()
		}
	}
}

type fakeSource struct {
	mu    sync.Mutex
	pages int
	err   error
	calls int
	block chan struct{}
}

func (s *fakeSource) Open(ctx context.Context, ref domain.DocumentRef) (*domain.Document, error) {
	s.mu.Lock()
	s.calls++
	call, block, pages, err := s.calls, s.block, s.pages, s.err
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &domain.Document{
		Handle: fmt.Sprintf("doc-%d", call),
		Data:   ref.Data,
		Info:   domain.DocumentInfo{Name: ref.Name, NumPages: pages},
		Outline: []domain.OutlineItem{
			{Title: "Introduction", PageNumber: 1},
			{Title: "Conclusion", PageNumber: pages, Level: 0},
		},
	}, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.SearchResult
	err     error
	terms   []string
	started chan string
	release chan struct{}
}

func (s *fakeSearcher) Search(ctx context.Context, doc *domain.Document, term string) ([]domain.SearchResult, error) {
	s.mu.Lock()
	s.terms = append(s.terms, term)
	started, release := s.started, s.release
	s.mu.Unlock()

	if started != nil {
		started <- term
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results[term], nil
}

func (s *fakeSearcher) Terms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.terms...)
}

var errBroken = errors.New("broken document")

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func hits(pages ...int) []domain.SearchResult {
	out := make([]domain.SearchResult, len(pages))
	for i, p := range pages {
		out[i] = domain.SearchResult{
			PageNumber:  p,
			TextContent: "needle",
			MatchIndex:  i,
			BoundingBox: domain.BoundingBox{X: 10, Y: 20, Width: 30, Height: 12},
		}
	}
	return out
}

type fixture struct {
	viewer    *Viewer
	source    *fakeSource
	searcher  *fakeSearcher
	scheduler *fakeScheduler
}

func newFixture(t *testing.T, pages int, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		source:    &fakeSource{pages: pages},
		searcher:  &fakeSearcher{results: map[string][]domain.SearchResult{}},
		scheduler: &fakeScheduler{},
	}
	opts = append([]Option{WithScheduler(f.scheduler)}, opts...)
	v, err := New(f.source, f.searcher, logger.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	f.viewer = v
	return f
}

// loaded returns a fixture whose viewer already shows a document.
func loaded(t *testing.T, pages int, opts ...Option) *fixture {
	t.Helper()
	f := newFixture(t, pages, opts...)
	_, err := f.viewer.LoadDocument(context.Background(), domain.DocumentRef{Name: "sample.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	return f
}
