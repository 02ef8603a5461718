package domain

// FitMode is the zoom policy of a viewer.
type FitMode string

const (
	FitModeWidth  FitMode = "width"
	FitModePage   FitMode = "page"
	FitModeCustom FitMode = "custom"
)

// Theme is the colour scheme requested by the user.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// SearchStatus is the phase of the search state machine.
type SearchStatus string

const (
	SearchIdle      SearchStatus = "idle"
	SearchSearching SearchStatus = "searching"
	SearchResults   SearchStatus = "results"
	SearchNoResults SearchStatus = "no_results"
)

// BoundingBox is a rectangle in unscaled page coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SearchResult is a single text match inside a document.
type SearchResult struct {
	PageNumber  int         `json:"page_number"`
	TextContent string      `json:"text_content"`
	MatchIndex  int         `json:"match_index"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// ViewerState is one immutable snapshot of a viewer. Transitions always
// build a new value; slices held by a snapshot are never written to.
type ViewerState struct {
	CurrentPage int     `json:"current_page"`
	NumPages    int     `json:"num_pages"`
	Scale       float64 `json:"scale"`
	Rotation    int     `json:"rotation"`
	FitMode     FitMode `json:"fit_mode"`

	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`

	SearchStatus       SearchStatus   `json:"search_status"`
	SearchTerm         string         `json:"search_term"`
	PendingSearchTerm  string         `json:"pending_search_term,omitempty"`
	SearchResults      []SearchResult `json:"search_results"`
	CurrentSearchIndex int            `json:"current_search_index"`

	ShowThumbnails bool  `json:"show_thumbnails"`
	ShowOutline    bool  `json:"show_outline"`
	Theme          Theme `json:"theme"`
}

// NewViewerState returns the state of a viewer with no document.
func NewViewerState() ViewerState {
	return ViewerState{
		CurrentPage:        1,
		NumPages:           0,
		Scale:              1.0,
		Rotation:           0,
		FitMode:            FitModeWidth,
		SearchStatus:       SearchIdle,
		SearchResults:      []SearchResult{},
		CurrentSearchIndex: -1,
		ShowThumbnails:     true,
		ShowOutline:        false,
		Theme:              ThemeLight,
	}
}

// Clone returns a copy that shares no mutable memory with s.
func (s ViewerState) Clone() ViewerState {
	out := s
	out.SearchResults = make([]SearchResult, len(s.SearchResults))
	copy(out.SearchResults, s.SearchResults)
	return out
}

// Validate checks the structural invariants of a snapshot.
func (s ViewerState) Validate() error {
	if s.NumPages < 0 {
		return &ValidationError{Field: "num_pages", Message: "page count cannot be negative"}
	}
	if s.NumPages > 0 && (s.CurrentPage < 1 || s.CurrentPage > s.NumPages) {
		return &ValidationError{Field: "current_page", Message: "current page out of range"}
	}
	if s.Scale < 0.25 || s.Scale > 5.0 {
		return &ValidationError{Field: "scale", Message: "scale must be between 0.25 and 5"}
	}
	switch s.Rotation {
	case 0, 90, 180, 270:
	default:
		return &ValidationError{Field: "rotation", Message: "rotation must be a multiple of 90 below 360"}
	}
	if s.CurrentSearchIndex < -1 || s.CurrentSearchIndex >= len(s.SearchResults) {
		return &ValidationError{Field: "current_search_index", Message: "search index out of range"}
	}
	if len(s.SearchResults) > 0 && s.CurrentSearchIndex == -1 {
		return &ValidationError{Field: "current_search_index", Message: "search index must point at a result"}
	}
	if s.SearchTerm == "" && len(s.SearchResults) > 0 {
		return &ValidationError{Field: "search_results", Message: "results without a search term"}
	}
	for _, r := range s.SearchResults {
		if r.PageNumber < 1 || r.PageNumber > s.NumPages {
			return &ValidationError{Field: "search_results", Message: "result page out of range"}
		}
	}
	return nil
}

// DocumentInfo is the metadata reported by the document source.
type DocumentInfo struct {
	Name         string `json:"name,omitempty"`
	NumPages     int    `json:"num_pages"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// OutlineItem is an entry of a document's table of contents.
type OutlineItem struct {
	Title      string        `json:"title"`
	PageNumber int           `json:"page_number"`
	Level      int           `json:"level"`
	Children   []OutlineItem `json:"children,omitempty"`
}

// ZoomLevelType distinguishes numeric presets from fit policies.
type ZoomLevelType string

const (
	ZoomLevelPreset ZoomLevelType = "preset"
	ZoomLevelFit    ZoomLevelType = "fit"
)

// ZoomLevel is an entry of the toolbar zoom selector.
type ZoomLevel struct {
	Label string        `json:"label"`
	Value float64       `json:"value"`
	Type  ZoomLevelType `json:"type"`
}
