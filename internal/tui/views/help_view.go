package views

import (
	"fmt"

	"github.com/matheus3301/chatterm/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.View.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements ui.View.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"},
		{"/", "Filter users and groups"},
		{"?", "Help"},
		{"Esc", "Cancel / go back"},
		{"q", "Quit"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Chats", [][2]string{
		{"Enter", "Open conversation"},
		{"1-9", "Open Nth entry"},
		{"n", "New group"},
		{"r", "Reload users and groups"},
		{"j/Down", "Move down"},
		{"k/Up", "Move up"},
	}},
	{"Conversation", [][2]string{
		{"i", "Focus composer"},
		{"Enter", "Send (in composer)"},
		{"d", "Conversation details"},
		{"Esc", "Leave composer / close conversation"},
	}},
	{"Commands", [][2]string{
		{":users", "Reload users"},
		{":groups", "Reload groups"},
		{":group <name>", "New group with that name"},
		{":open <name>", "Open user or group by name"},
		{":attach <path>", "Attach an image to the next message"},
		{":detach", "Drop the pending image"},
		{":reconnect", "Reconnect the real-time channel"},
		{":logout", "Sign out"},
		{":help / :h", "Show this help"},
		{":quit / :q", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	for _, sec := range helpSections {
		_, _ = fmt.Fprintf(hv, "\n  [::b]%s[-:-:-]\n\n", sec.title)
		for _, k := range sec.keys {
			_, _ = fmt.Fprintf(hv, "  [%s]%-16s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
}
