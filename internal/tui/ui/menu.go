package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is how many hints fit in one column of the header.
const menuRows = 6

// Menu displays keyboard shortcut hints in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint bar.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders menu hints top to bottom, wrapping into a new column
// every menuRows entries.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, m.layout(hints))
}

func (m *Menu) layout(hints []MenuHint) string {
	keyColor := ColorName(m.theme.MenuKeyColor)
	numColor := ColorName(m.theme.NumericKeyColor)

	cols := (len(hints) + menuRows - 1) / menuRows
	width := 0
	for _, h := range hints {
		width = max(width, len(h.Key)+len(h.Description)+3)
	}

	var b strings.Builder
	for row := 0; row < menuRows && row < len(hints); row++ {
		for col := 0; col < cols; col++ {
			i := col*menuRows + row
			if i >= len(hints) {
				break
			}
			h := hints[i]
			kc := keyColor
			if h.Numeric {
				kc = numColor
			}
			pad := width - (len(h.Key) + len(h.Description) + 3)
			fmt.Fprintf(&b, "[%s::b]<%s>[-:-:-] %s%s  ", kc, h.Key, h.Description, strings.Repeat(" ", pad))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
