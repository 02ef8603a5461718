// Package viewer holds the document viewer state machine: navigation,
// zoom, debounced search, annotations and keyboard shortcuts, composed by
// Viewer into a single action surface that produces immutable snapshots.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pdf-viewer/internal/domain"
)

// LoadErrorMessage is the user-visible text of a failed document load.
const LoadErrorMessage = "Failed to load PDF document"

// View is a snapshot plus the fields derived from it on read.
type View struct {
	State               domain.ViewerState   `json:"state"`
	Document            *domain.DocumentInfo `json:"document,omitempty"`
	CanGoToPrevious     bool                 `json:"can_go_to_previous"`
	CanGoToNext         bool                 `json:"can_go_to_next"`
	HasSearchResults    bool                 `json:"has_search_results"`
	CurrentSearchResult *domain.SearchResult `json:"current_search_result"`
	ZoomLabel           string               `json:"zoom_label"`
}

// NewView derives the read-only fields of s.
func NewView(s domain.ViewerState) View {
	return View{
		State:               s,
		CanGoToPrevious:     CanGoToPrevious(s),
		CanGoToNext:         CanGoToNext(s),
		HasSearchResults:    HasSearchResults(s),
		CurrentSearchResult: CurrentSearchResult(s),
		ZoomLabel:           ZoomLabel(s),
	}
}

// Listener receives every new snapshot.
type Listener func(domain.ViewerState)

// Option configures a Viewer.
type Option func(*options)

type options struct {
	scheduler Scheduler
	delay     time.Duration
	newID     func() string
	now       func() time.Time
	hooks     ShortcutHooks
	shortcuts func(v *Viewer) []domain.KeyboardShortcut
}

// WithScheduler replaces the timer used to debounce search.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithSearchDelay sets the search debounce delay.
func WithSearchDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithClock sets the time source for annotation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the annotation id generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithShortcutHooks registers the presentation hooks of the default keymap.
func WithShortcutHooks(h ShortcutHooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithShortcuts replaces the default keymap.
func WithShortcuts(build func(v *Viewer) []domain.KeyboardShortcut) Option {
	return func(o *options) { o.shortcuts = build }
}

// Viewer is the facade over the controllers. Each action runs to
// completion under one lock and publishes a whole new snapshot, so readers
// never observe a partial transition. Listeners are called outside the
// lock.
type Viewer struct {
	mu sync.Mutex

	state    domain.ViewerState
	document *domain.Document
	loadGen  uint64
	closed   bool

	nav         NavigationController
	zoom        ZoomController
	search      *SearchController
	annotations *AnnotationStore
	shortcuts   *ShortcutDispatcher

	source   domain.DocumentSource
	searcher domain.TextSearcher
	logger   domain.Logger

	listeners    map[int]Listener
	nextListener int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a viewer with no document loaded.
func New(source domain.DocumentSource, searcher domain.TextSearcher, logger domain.Logger, opts ...Option) (*Viewer, error) {
	o := options{delay: DefaultSearchDelay}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		state:       domain.NewViewerState(),
		search:      NewSearchController(o.scheduler, o.delay),
		annotations: NewAnnotationStore(o.newID, o.now),
		source:      source,
		searcher:    searcher,
		logger:      logger,
		listeners:   make(map[int]Listener),
		ctx:         ctx,
		cancel:      cancel,
	}

	var table []domain.KeyboardShortcut
	if o.shortcuts != nil {
		table = o.shortcuts(v)
	} else {
		table = DefaultShortcuts(v, o.hooks)
	}
	d, err := NewShortcutDispatcher(table)
	if err != nil {
		cancel()
		return nil, err
	}
	v.shortcuts = d
	return v, nil
}

// State returns the current snapshot.
func (v *Viewer) State() domain.ViewerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

// View returns the current snapshot with its derived fields.
func (v *Viewer) View() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	view := NewView(v.state.Clone())
	if v.document != nil {
		info := v.document.Info
		view.Document = &info
	}
	return view
}

// Subscribe registers l for every future snapshot and returns a function
// that removes it.
func (v *Viewer) Subscribe(l Listener) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextListener
	v.nextListener++
	v.listeners[id] = l
	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// commitLocked installs next and returns the listeners to notify.
func (v *Viewer) commitLocked(next domain.ViewerState) []Listener {
	v.state = next
	ls := make([]Listener, 0, len(v.listeners))
	for _, l := range v.listeners {
		ls = append(ls, l)
	}
	return ls
}

func notify(ls []Listener, s domain.ViewerState) {
	for _, l := range ls {
		l(s.Clone())
	}
}

// apply runs a synchronous transition.
func (v *Viewer) apply(fn func(domain.ViewerState) domain.ViewerState) domain.ViewerState {
	v.mu.Lock()
	if v.closed {
		s := v.state.Clone()
		v.mu.Unlock()
		return s
	}
	next := fn(v.state)
	ls := v.commitLocked(next)
	v.mu.Unlock()

	notify(ls, next)
	return next.Clone()
}

// LoadDocument opens ref and, on success, resets navigation, search and
// annotations for the new document. While the load is pending the
// snapshot reports IsLoading. A failed load leaves no document loaded and
// sets Error. A load overtaken by a newer one returns ErrLoadSuperseded
// without touching the state.
func (v *Viewer) LoadDocument(ctx context.Context, ref domain.DocumentRef) (domain.ViewerState, error) {
	v.mu.Lock()
	if v.closed {
		s := v.state.Clone()
		v.mu.Unlock()
		return s, domain.ErrViewerClosed
	}
	v.loadGen++
	gen := v.loadGen
	v.search.Cancel()
	pending := v.state
	pending.IsLoading = true
	pending.Error = ""
	pending = clearSearch(pending)
	ls := v.commitLocked(pending)
	v.mu.Unlock()
	notify(ls, pending)

	doc, err := v.source.Open(ctx, ref)

	v.mu.Lock()
	if v.closed || gen != v.loadGen {
		s := v.state.Clone()
		v.mu.Unlock()
		return s, domain.ErrLoadSuperseded
	}
	// A query issued while the load was running targeted the old document.
	v.search.Cancel()

	next := v.state
	next.IsLoading = false
	next.CurrentPage = 1
	next = clearSearch(next)
	v.annotations.Clear()

	if err != nil {
		v.document = nil
		next.NumPages = 0
		next.Error = LoadErrorMessage
		ls = v.commitLocked(next)
		v.mu.Unlock()

		v.logger.Error("Document load failed", err, "name", ref.Name, "url", ref.URL)
		notify(ls, next)
		return next.Clone(), fmt.Errorf("load document: %w", err)
	}

	v.document = doc
	next.NumPages = doc.Info.NumPages
	next.Error = ""
	ls = v.commitLocked(next)
	v.mu.Unlock()

	v.logger.Info("Document loaded", "handle", doc.Handle, "pages", doc.Info.NumPages)
	notify(ls, next)
	return next.Clone(), nil
}

// Document returns the loaded document, or nil.
func (v *Viewer) Document() *domain.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.document
}

// Outline returns the table of contents of the loaded document.
func (v *Viewer) Outline() []domain.OutlineItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.document == nil || v.document.Outline == nil {
		return []domain.OutlineItem{}
	}
	return v.document.Outline
}

func (v *Viewer) GoToPage(n int) domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState { return v.nav.GoToPage(s, n) })
}

func (v *Viewer) NextPage() domain.ViewerState {
	return v.apply(v.nav.NextPage)
}

func (v *Viewer) PreviousPage() domain.ViewerState {
	return v.apply(v.nav.PreviousPage)
}

// GoToOutlineItem jumps to the page an outline entry points at.
func (v *Viewer) GoToOutlineItem(item domain.OutlineItem) domain.ViewerState {
	return v.GoToPage(item.PageNumber)
}

func (v *Viewer) SetZoom(scale float64) domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState { return v.zoom.SetZoom(s, scale) })
}

func (v *Viewer) ZoomIn() domain.ViewerState {
	return v.apply(v.zoom.ZoomIn)
}

func (v *Viewer) ZoomOut() domain.ViewerState {
	return v.apply(v.zoom.ZoomOut)
}

func (v *Viewer) FitToWidth() domain.ViewerState {
	return v.apply(v.zoom.FitToWidth)
}

func (v *Viewer) FitToPage() domain.ViewerState {
	return v.apply(v.zoom.FitToPage)
}

// ApplyZoomLevel selects a toolbar zoom entry by label.
func (v *Viewer) ApplyZoomLevel(label string) (domain.ViewerState, error) {
	var applyErr error
	s := v.apply(func(s domain.ViewerState) domain.ViewerState {
		next, err := v.zoom.ApplyZoomLevel(s, label)
		applyErr = err
		return next
	})
	return s, applyErr
}

func (v *Viewer) RotateClockwise() domain.ViewerState {
	return v.apply(v.zoom.RotateClockwise)
}

func (v *Viewer) RotateCounterClockwise() domain.ViewerState {
	return v.apply(v.zoom.RotateCounterClockwise)
}

func (v *Viewer) ToggleThumbnails() domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		s.ShowThumbnails = !s.ShowThumbnails
		return s
	})
}

func (v *Viewer) ToggleOutline() domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		s.ShowOutline = !s.ShowOutline
		return s
	})
}

func (v *Viewer) ToggleTheme() domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		if s.Theme == domain.ThemeDark {
			s.Theme = domain.ThemeLight
		} else {
			s.Theme = domain.ThemeDark
		}
		return s
	})
}

// Search starts a debounced query. A blank term clears the search state
// immediately. The results arrive asynchronously as a new snapshot.
func (v *Viewer) Search(term string) domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		next, job := v.search.Begin(s, term)
		if job != nil {
			v.search.Schedule(job, v.runSearch)
		}
		return next
	})
}

// runSearch executes a debounced query once its timer fires.
func (v *Viewer) runSearch(job searchJob) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	ctx, ok := v.search.Start(v.ctx, job)
	if !ok {
		v.mu.Unlock()
		return
	}
	doc := v.document
	v.mu.Unlock()

	var (
		results []domain.SearchResult
		err     error
	)
	if doc == nil {
		err = domain.ErrNoDocument
	} else {
		results, err = v.searcher.Search(ctx, doc, job.term)
	}

	v.mu.Lock()
	if v.closed || !v.search.IsCurrent(job) {
		v.mu.Unlock()
		return
	}
	next, page, jump := v.search.Complete(v.state, job, results, err)
	if jump {
		next = v.nav.GoToPage(next, page)
	}
	ls := v.commitLocked(next)
	v.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		v.logger.Warn("Search failed", "term", job.term, "error", err)
	}
	notify(ls, next)
}

func (v *Viewer) NextSearchResult() domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		next, page, ok := v.search.Next(s)
		if !ok {
			return s
		}
		return v.nav.GoToPage(next, page)
	})
}

func (v *Viewer) PreviousSearchResult() domain.ViewerState {
	return v.apply(func(s domain.ViewerState) domain.ViewerState {
		next, page, ok := v.search.Previous(s)
		if !ok {
			return s
		}
		return v.nav.GoToPage(next, page)
	})
}

// AddAnnotation stores a new annotation on a page of the loaded document.
func (v *Viewer) AddAnnotation(in domain.NewAnnotation) (domain.Annotation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.document == nil {
		return domain.Annotation{}, domain.ErrNoDocument
	}
	if in.PageNumber > v.state.NumPages {
		return domain.Annotation{}, domain.ErrPageOutOfRange
	}
	return v.annotations.Add(in)
}

// UpdateAnnotation changes content, position and color of an annotation.
// An unknown id is reported as ErrAnnotationNotFound and changes nothing.
func (v *Viewer) UpdateAnnotation(a domain.Annotation) (domain.Annotation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	updated, err := v.annotations.Update(a)
	if errors.Is(err, domain.ErrAnnotationNotFound) {
		v.logger.Debug("Annotation not found for update", "annotation_id", a.ID)
	}
	return updated, err
}

// DeleteAnnotation removes an annotation. An unknown id is reported as
// ErrAnnotationNotFound and changes nothing.
func (v *Viewer) DeleteAnnotation(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	err := v.annotations.Delete(id)
	if errors.Is(err, domain.ErrAnnotationNotFound) {
		v.logger.Debug("Annotation not found for delete", "annotation_id", id)
	}
	return err
}

// Annotation returns one annotation by id.
func (v *Viewer) Annotation(id string) (domain.Annotation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.annotations.Get(id)
}

// Annotations returns every annotation in insertion order.
func (v *Viewer) Annotations() []domain.Annotation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.annotations.List()
}

// AnnotationsForPage returns the annotations of one page.
func (v *Viewer) AnnotationsForPage(pageNumber int) []domain.Annotation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.annotations.ListForPage(pageNumber)
}

// HandleKey dispatches a key event. Shortcuts only fire while a document
// is loaded. It reports whether a shortcut ran.
func (v *Viewer) HandleKey(ev domain.KeyEvent) bool {
	v.mu.Lock()
	active := !v.closed && v.document != nil
	d := v.shortcuts
	v.mu.Unlock()

	if !active {
		return false
	}
	return d.Dispatch(ev)
}

// Shortcuts returns the keymap, for help screens.
func (v *Viewer) Shortcuts() []domain.KeyboardShortcut {
	return v.shortcuts.Shortcuts()
}

// Close cancels any pending or running search and turns every later
// action into a no-op. It is safe to call more than once.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.search.Cancel()
	v.cancel()
	v.listeners = make(map[int]Listener)
}
