package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// ProfileData holds what the header shows about the running client.
type ProfileData struct {
	Profile    string
	User       string
	Status     string
	Backend    string
	UserCount  int
	GroupCount int
}

// ProfileInfo displays profile and connection metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile info.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fg := ColorName(pi.theme.FgColor)
	ct := ColorName(pi.theme.CounterColor)

	user := data.User
	if user == "" {
		user = "-"
	}

	_, _ = fmt.Fprintf(pi,
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]User:[-:-:-]    [%s]%s[-]\n"+
			"[%s::b]Status:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Backend:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Users:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Groups:[-:-:-]  [%s]%d[-]",
		fg, ct, tview.Escape(data.Profile),
		fg, ct, tview.Escape(user),
		fg, ct, data.Status,
		fg, ct, tview.Escape(data.Backend),
		fg, ct, data.UserCount,
		fg, ct, data.GroupCount,
	)
}
