package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// View is a page the application can show.
type View interface {
	tview.Primitive
	Name() string
	Hints() []MenuHint
}

// Focuser is implemented by views whose focus belongs to an inner widget,
// such as a form inside a centering layout.
type Focuser interface {
	FocusTarget() tview.Primitive
}

// FocusTarget returns the primitive that should take focus when v is shown.
func FocusTarget(v View) tview.Primitive {
	if f, ok := v.(Focuser); ok {
		return f.FocusTarget()
	}
	return v
}
