package viewer

import (
	"fmt"
	"strings"
	"sync/atomic"

	"pdf-viewer/internal/domain"
)

type shortcutKey struct {
	key              string
	ctrl, shift, alt bool
}

func keyOf(key string, ctrl, shift, alt bool) shortcutKey {
	return shortcutKey{key: strings.ToLower(key), ctrl: ctrl, shift: shift, alt: alt}
}

// ShortcutDispatcher maps key events to at most one registered action.
// The table is fixed at construction.
type ShortcutDispatcher struct {
	shortcuts []domain.KeyboardShortcut
	index     map[shortcutKey]int
	enabled   atomic.Bool
}

// NewShortcutDispatcher builds a dispatcher. Two shortcuts with the same
// key and modifiers are rejected.
func NewShortcutDispatcher(shortcuts []domain.KeyboardShortcut) (*ShortcutDispatcher, error) {
	d := &ShortcutDispatcher{
		shortcuts: make([]domain.KeyboardShortcut, 0, len(shortcuts)),
		index:     make(map[shortcutKey]int, len(shortcuts)),
	}
	for _, sc := range shortcuts {
		if sc.Key == "" || sc.Action == nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidShortcut, sc.Description)
		}
		k := keyOf(sc.Key, sc.CtrlKey, sc.ShiftKey, sc.AltKey)
		if _, dup := d.index[k]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateShortcut, describe(sc))
		}
		d.index[k] = len(d.shortcuts)
		d.shortcuts = append(d.shortcuts, sc)
	}
	d.enabled.Store(true)
	return d, nil
}

// SetEnabled turns dispatching on or off.
func (d *ShortcutDispatcher) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
}

// Enabled reports whether events are dispatched.
func (d *ShortcutDispatcher) Enabled() bool {
	return d.enabled.Load()
}

// Dispatch runs the action matching ev and reports whether one ran. When
// it returns true the caller must suppress the default action and stop
// propagation. Events aimed at text inputs never match.
func (d *ShortcutDispatcher) Dispatch(ev domain.KeyEvent) bool {
	if !d.enabled.Load() || ev.Target.IsTextInput() {
		return false
	}
	i, ok := d.index[keyOf(ev.Key, ev.CtrlKey, ev.ShiftKey, ev.AltKey)]
	if !ok {
		return false
	}
	d.shortcuts[i].Action()
	return true
}

// Shortcuts returns the registered table in registration order.
func (d *ShortcutDispatcher) Shortcuts() []domain.KeyboardShortcut {
	out := make([]domain.KeyboardShortcut, len(d.shortcuts))
	copy(out, d.shortcuts)
	return out
}

func describe(sc domain.KeyboardShortcut) string {
	var b strings.Builder
	if sc.CtrlKey {
		b.WriteString("Ctrl+")
	}
	if sc.ShiftKey {
		b.WriteString("Shift+")
	}
	if sc.AltKey {
		b.WriteString("Alt+")
	}
	if sc.Key == " " {
		b.WriteString("Space")
	} else {
		b.WriteString(sc.Key)
	}
	return b.String()
}

// ShortcutHooks are presentation effects a shortcut can trigger. Nil hooks
// leave their shortcut unregistered.
type ShortcutHooks struct {
	Search func()
	Print  func()
}

// DefaultShortcuts is the standard keyboard map for v.
func DefaultShortcuts(v *Viewer, hooks ShortcutHooks) []domain.KeyboardShortcut {
	next := func() { v.NextPage() }
	prev := func() { v.PreviousPage() }
	zoomIn := func() { v.ZoomIn() }

	table := []domain.KeyboardShortcut{
		{Key: "ArrowRight", Action: next, Description: "Next page"},
		{Key: "ArrowLeft", Action: prev, Description: "Previous page"},
		{Key: "PageDown", Action: next, Description: "Next page"},
		{Key: "PageUp", Action: prev, Description: "Previous page"},
		{Key: " ", Action: next, Description: "Next page (Space)"},
		{Key: " ", ShiftKey: true, Action: prev, Description: "Previous page (Shift+Space)"},
		{Key: "=", CtrlKey: true, Action: zoomIn, Description: "Zoom in"},
		{Key: "+", CtrlKey: true, Action: zoomIn, Description: "Zoom in"},
		{Key: "-", CtrlKey: true, Action: func() { v.ZoomOut() }, Description: "Zoom out"},
		{Key: "0", CtrlKey: true, Action: func() { v.FitToWidth() }, Description: "Fit to width"},
		{Key: "1", CtrlKey: true, Action: func() { v.FitToPage() }, Description: "Fit to page"},
	}
	if hooks.Search != nil {
		table = append(table, domain.KeyboardShortcut{Key: "f", CtrlKey: true, Action: hooks.Search, Description: "Search"})
	}
	if hooks.Print != nil {
		table = append(table, domain.KeyboardShortcut{Key: "p", CtrlKey: true, Action: hooks.Print, Description: "Print"})
	}
	return append(table,
		domain.KeyboardShortcut{Key: "t", CtrlKey: true, Action: func() { v.ToggleThumbnails() }, Description: "Toggle thumbnails"},
		domain.KeyboardShortcut{Key: "r", CtrlKey: true, Action: func() { v.RotateClockwise() }, Description: "Rotate clockwise"},
		domain.KeyboardShortcut{Key: "r", CtrlKey: true, ShiftKey: true, Action: func() { v.RotateCounterClockwise() }, Description: "Rotate counter-clockwise"},
	)
}
