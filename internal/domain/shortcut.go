package domain

import "strings"

// KeyboardShortcut binds a key plus modifiers to a viewer action.
type KeyboardShortcut struct {
	Key         string `json:"key"`
	CtrlKey     bool   `json:"ctrl_key,omitempty"`
	ShiftKey    bool   `json:"shift_key,omitempty"`
	AltKey      bool   `json:"alt_key,omitempty"`
	Action      func() `json:"-"`
	Description string `json:"description"`
}

// EventTarget describes the element that had focus when a key was pressed.
type EventTarget struct {
	TagName         string `json:"tag_name,omitempty"`
	ContentEditable bool   `json:"content_editable,omitempty"`
}

// IsTextInput reports whether typed characters belong to the target.
func (t EventTarget) IsTextInput() bool {
	if t.ContentEditable {
		return true
	}
	switch strings.ToUpper(t.TagName) {
	case "INPUT", "TEXTAREA":
		return true
	}
	return false
}

// KeyEvent is a physical key press forwarded by the presentation layer.
type KeyEvent struct {
	Key      string      `json:"key"`
	CtrlKey  bool        `json:"ctrl_key"`
	ShiftKey bool        `json:"shift_key"`
	AltKey   bool        `json:"alt_key"`
	Target   EventTarget `json:"target"`
}
