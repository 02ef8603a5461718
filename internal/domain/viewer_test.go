package domain

import (
	"testing"
)

// TestViewerState_Validate checks the snapshot invariants.
// It tests:
// - The initial state of an empty viewer
// - Page bounds while a document is loaded
// - Scale and rotation domains
// - Search cursor consistency
func TestViewerState_Validate(t *testing.T) {
	loaded := NewViewerState()
	loaded.NumPages = 10

	withResults := loaded
	withResults.SearchTerm = "go"
	withResults.SearchResults = []SearchResult{{PageNumber: 2}}
	withResults.CurrentSearchIndex = 0

	tests := []struct {
		name    string
		mutate  func(s ViewerState) ViewerState
		wantErr bool
		errMsg  string
	}{
		{
			name:   "Initial state",
			mutate: func(s ViewerState) ViewerState { return NewViewerState() },
		},
		{
			name:   "Loaded document",
			mutate: func(s ViewerState) ViewerState { return s },
		},
		{
			// Page numbers are ignored while no document is loaded
			name: "Empty document ignores current page",
			mutate: func(s ViewerState) ViewerState {
				s.NumPages = 0
				s.CurrentPage = 42
				return s
			},
		},
		{
			name: "Current page past the end",
			mutate: func(s ViewerState) ViewerState {
				s.CurrentPage = 11
				return s
			},
			wantErr: true,
			errMsg:  "current_page: current page out of range",
		},
		{
			name: "Negative page count",
			mutate: func(s ViewerState) ViewerState {
				s.NumPages = -1
				return s
			},
			wantErr: true,
			errMsg:  "num_pages: page count cannot be negative",
		},
		{
			name: "Scale below minimum",
			mutate: func(s ViewerState) ViewerState {
				s.Scale = 0.1
				return s
			},
			wantErr: true,
			errMsg:  "scale: scale must be between 0.25 and 5",
		},
		{
			name: "Rotation not a right angle",
			mutate: func(s ViewerState) ViewerState {
				s.Rotation = 45
				return s
			},
			wantErr: true,
			errMsg:  "rotation: rotation must be a multiple of 90 below 360",
		},
		{
			name:   "Search results with cursor",
			mutate: func(s ViewerState) ViewerState { return withResults },
		},
		{
			name: "Search cursor past the results",
			mutate: func(s ViewerState) ViewerState {
				out := withResults
				out.CurrentSearchIndex = 1
				return out
			},
			wantErr: true,
			errMsg:  "current_search_index: search index out of range",
		},
		{
			name: "Results without cursor",
			mutate: func(s ViewerState) ViewerState {
				out := withResults
				out.CurrentSearchIndex = -1
				return out
			},
			wantErr: true,
			errMsg:  "current_search_index: search index must point at a result",
		},
		{
			name: "Results without term",
			mutate: func(s ViewerState) ViewerState {
				out := withResults
				out.SearchTerm = ""
				return out
			},
			wantErr: true,
			errMsg:  "search_results: results without a search term",
		},
		{
			name: "Result past the last page",
			mutate: func(s ViewerState) ViewerState {
				out := withResults
				out.SearchResults = []SearchResult{{PageNumber: 11}}
				return out
			},
			wantErr: true,
			errMsg:  "search_results: result page out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(loaded).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ViewerState.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && err.Error() != tt.errMsg {
				t.Errorf("ViewerState.Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

// TestViewerState_Clone checks that a clone does not alias the results slice.
func TestViewerState_Clone(t *testing.T) {
	s := NewViewerState()
	s.SearchTerm = "x"
	s.SearchResults = []SearchResult{{PageNumber: 1, TextContent: "x"}}
	s.CurrentSearchIndex = 0

	c := s.Clone()
	c.SearchResults[0].PageNumber = 99

	if s.SearchResults[0].PageNumber != 1 {
		t.Fatalf("expected original results untouched, got page %d", s.SearchResults[0].PageNumber)
	}
}

func TestNewAnnotation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      NewAnnotation
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid highlight",
			in:   NewAnnotation{Type: AnnotationHighlight, PageNumber: 1, Color: "#ff0"},
		},
		{
			name:    "Unknown type",
			in:      NewAnnotation{Type: "star", PageNumber: 1},
			wantErr: true,
			errMsg:  "type: unknown annotation type",
		},
		{
			name:    "Zero page",
			in:      NewAnnotation{Type: AnnotationNote, PageNumber: 0},
			wantErr: true,
			errMsg:  "page_number: page number must be positive",
		},
		{
			name: "Negative width",
			in: NewAnnotation{
				Type:       AnnotationRectangle,
				PageNumber: 2,
				Position:   BoundingBox{Width: -1},
			},
			wantErr: true,
			errMsg:  "position: position size cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAnnotation.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && err.Error() != tt.errMsg {
				t.Errorf("NewAnnotation.Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestEventTarget_IsTextInput(t *testing.T) {
	tests := []struct {
		target EventTarget
		want   bool
	}{
		{EventTarget{TagName: "INPUT"}, true},
		{EventTarget{TagName: "textarea"}, true},
		{EventTarget{TagName: "DIV", ContentEditable: true}, true},
		{EventTarget{TagName: "DIV"}, false},
		{EventTarget{}, false},
	}
	for _, tt := range tests {
		if got := tt.target.IsTextInput(); got != tt.want {
			t.Errorf("IsTextInput(%+v) = %v, want %v", tt.target, got, tt.want)
		}
	}
}
