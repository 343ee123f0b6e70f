package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/tui/model"
)

// FlashBar shows the current flash notification on one line.
type FlashBar struct {
	*tview.TextView
	theme *Theme
	shown model.FlashMessage
}

// NewFlashBar creates an empty flash bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update shows msg, or clears the bar for nil. Redrawing the message
// already on screen is skipped.
func (fb *FlashBar) Update(msg *model.FlashMessage) {
	var next model.FlashMessage
	if msg != nil {
		next = *msg
	}
	if next == fb.shown {
		return
	}
	fb.shown = next
	if msg == nil {
		fb.SetText("")
		return
	}
	fb.SetText(fmt.Sprintf(" [%s]%s %s[-]", ColorName(fb.color(msg.Level)), flashIcon[msg.Level], tview.Escape(msg.Text)))
}

var flashIcon = map[model.FlashLevel]string{
	model.FlashInfo: "●",
	model.FlashWarn: "▲",
	model.FlashErr:  "✖",
}

func (fb *FlashBar) color(l model.FlashLevel) tcell.Color {
	switch l {
	case model.FlashWarn:
		return fb.theme.FlashWarnColor
	case model.FlashErr:
		return fb.theme.FlashErrColor
	default:
		return fb.theme.FlashInfoColor
	}
}
