package viewer

import (
	"context"
	"strings"
	"time"

	"pdf-viewer/internal/domain"
)

// DefaultSearchDelay is the quiet period before a query runs.
const DefaultSearchDelay = 300 * time.Millisecond

// Timer is a pending deferred call.
type Timer interface {
	Stop() bool
}

// Scheduler defers a call. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// searchJob is a query waiting for its debounce delay to elapse.
type searchJob struct {
	generation uint64
	term       string
}

// SearchController runs the Idle -> Searching -> Results | NoResults
// machine. Every new query bumps the generation; a job whose generation is
// no longer current is discarded whether it is still waiting on its timer
// or already executing.
//
// The controller is not safe for concurrent use; the Viewer serialises
// access to it.
type SearchController struct {
	scheduler Scheduler
	delay     time.Duration

	generation uint64
	timer      Timer
	cancel     context.CancelFunc
}

// NewSearchController creates a controller that waits delay before running
// a query.
func NewSearchController(scheduler Scheduler, delay time.Duration) *SearchController {
	if scheduler == nil {
		scheduler = clockScheduler{}
	}
	if delay < 0 {
		delay = 0
	}
	return &SearchController{scheduler: scheduler, delay: delay}
}

// Begin starts a new query for term. A blank term returns to Idle at once
// and the returned job is nil; otherwise the caller schedules the job.
func (c *SearchController) Begin(s domain.ViewerState, term string) (domain.ViewerState, *searchJob) {
	c.Cancel()

	if strings.TrimSpace(term) == "" {
		return clearSearch(s), nil
	}

	s.SearchStatus = domain.SearchSearching
	s.PendingSearchTerm = term
	return s, &searchJob{generation: c.generation, term: term}
}

// Schedule arms the debounce timer for job. run is called on the timer's
// goroutine once the delay elapses.
func (c *SearchController) Schedule(job *searchJob, run func(job searchJob)) {
	j := *job
	c.timer = c.scheduler.AfterFunc(c.delay, func() { run(j) })
}

// Start marks job as executing and returns the context the query runs
// under. ok is false when the job has been superseded.
func (c *SearchController) Start(parent context.Context, job searchJob) (ctx context.Context, ok bool) {
	if !c.IsCurrent(job) {
		return nil, false
	}
	c.timer = nil
	ctx, c.cancel = context.WithCancel(parent)
	return ctx, true
}

// IsCurrent reports whether job is the latest query.
func (c *SearchController) IsCurrent(job searchJob) bool {
	return job.generation == c.generation
}

// Complete folds the query outcome into s. On the first match it returns
// the page to jump to; the Viewer performs the jump through navigation.
// A failed query degrades to NoResults.
func (c *SearchController) Complete(s domain.ViewerState, job searchJob, results []domain.SearchResult, err error) (next domain.ViewerState, jumpTo int, jump bool) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	s.SearchTerm = job.term
	s.PendingSearchTerm = ""

	if err != nil || len(results) == 0 {
		s.SearchStatus = domain.SearchNoResults
		s.SearchResults = []domain.SearchResult{}
		s.CurrentSearchIndex = -1
		return s, 0, false
	}

	out := make([]domain.SearchResult, len(results))
	copy(out, results)
	s.SearchStatus = domain.SearchResults
	s.SearchResults = out
	s.CurrentSearchIndex = 0
	return s, out[0].PageNumber, true
}

// Cancel invalidates any waiting or executing query.
func (c *SearchController) Cancel() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Next moves the cursor forward, wrapping at the end.
func (c *SearchController) Next(s domain.ViewerState) (domain.ViewerState, int, bool) {
	return c.step(s, 1)
}

// Previous moves the cursor backward, wrapping at the start.
func (c *SearchController) Previous(s domain.ViewerState) (domain.ViewerState, int, bool) {
	return c.step(s, -1)
}

func (c *SearchController) step(s domain.ViewerState, delta int) (domain.ViewerState, int, bool) {
	k := len(s.SearchResults)
	if k == 0 {
		return s, 0, false
	}
	idx := s.CurrentSearchIndex
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%k + k) % k
	}
	s.CurrentSearchIndex = idx
	return s, s.SearchResults[idx].PageNumber, true
}

// clearSearch returns s in the Idle search state.
func clearSearch(s domain.ViewerState) domain.ViewerState {
	s.SearchStatus = domain.SearchIdle
	s.SearchTerm = ""
	s.PendingSearchTerm = ""
	s.SearchResults = []domain.SearchResult{}
	s.CurrentSearchIndex = -1
	return s
}

// CurrentSearchResult is derived on every read; nil when there is none.
func CurrentSearchResult(s domain.ViewerState) *domain.SearchResult {
	if s.CurrentSearchIndex < 0 || s.CurrentSearchIndex >= len(s.SearchResults) {
		return nil
	}
	r := s.SearchResults[s.CurrentSearchIndex]
	return &r
}

// HasSearchResults is derived on every read.
func HasSearchResults(s domain.ViewerState) bool {
	return len(s.SearchResults) > 0
}
