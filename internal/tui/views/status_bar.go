package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/status"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// StatusBar shows the profile, connection state, signed-in user and clock.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	state   status.State
	user    string
	now     func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &StatusBar{
		TextView: tv,
		theme:    theme,
		state:    status.Booting,
		now:      time.Now,
	}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetState updates the connection state display.
func (sb *StatusBar) SetState(s status.State) {
	sb.state = s
	sb.render()
}

// SetUser updates the signed-in user display.
func (sb *StatusBar) SetUser(name string) {
	sb.user = name
	sb.render()
}

func (sb *StatusBar) stateColor() string {
	switch sb.state {
	case status.Online:
		return "green"
	case status.Connecting, status.Booting:
		return "yellow"
	case status.Offline, status.AuthRequired:
		return ui.ColorName(sb.theme.FlashWarnColor)
	default:
		return ui.ColorName(sb.theme.FlashErrColor)
	}
}

func (sb *StatusBar) render() {
	sb.Clear()

	user := sb.user
	if user == "" {
		user = "-"
	}
	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | [%s]● %s[-] | %s | %s",
		tview.Escape(sb.profile), sb.stateColor(), sb.state.Label(),
		tview.Escape(user), sb.now().Format("15:04"))
}
