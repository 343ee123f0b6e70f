package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumbs is a breadcrumb bar showing the current navigation path.
type Crumbs struct {
	*tview.TextView
	theme *Theme
	label func(page string) string
}

// NewCrumbs creates a new breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// SetLabeler sets how page names are shown. Conversation pages use it to
// show the peer or group name instead of the page id.
func (c *Crumbs) SetLabeler(fn func(page string) string) {
	c.label = fn
}

// Update renders the breadcrumb trail from the page stack.
func (c *Crumbs) Update(stack []string) {
	c.Clear()
	if len(stack) == 0 {
		return
	}

	var parts []string
	for i, page := range stack {
		name := page
		if c.label != nil {
			name = c.label(page)
		}
		name = tview.Escape(name)
		if i == len(stack)-1 {
			// Active crumb.
			parts = append(parts, fmt.Sprintf("[%s:%s:b] %s [-:-:-]",
				ColorName(c.theme.CrumbActiveFg), ColorName(c.theme.CrumbActiveBg), name))
		} else {
			// Inactive crumb.
			parts = append(parts, fmt.Sprintf("[%s:%s:] %s [-:-:-]",
				ColorName(c.theme.CrumbInactiveFg), ColorName(c.theme.CrumbInactiveBg), name))
		}
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " > "))
}

// ColorName returns a tview color tag name for c.
func ColorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
