package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// ConversationInfo displays details about the selected user or group.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.View.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements ui.View.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders details for the selected conversation.
func (ci *ConversationInfo) Update(s model.State) {
	ci.Clear()
	switch {
	case s.SelectedUser != nil:
		ci.renderUser(*s.SelectedUser)
	case s.SelectedGroup != nil:
		ci.renderGroup(*s.SelectedGroup, s)
	}
}

func (ci *ConversationInfo) field(label, value string) {
	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)
	if value == "" {
		value = "-"
	}
	_, _ = fmt.Fprintf(ci, " [%s::b]%-12s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(singleLine(value)))
}

func (ci *ConversationInfo) renderUser(u api.User) {
	_, _ = fmt.Fprintln(ci)
	ci.field("Name", u.FullName)
	ci.field("Email", u.Email)
	ci.field("ID", u.ID)
	ci.field("Picture", u.ProfilePic)
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(singleLine(u.DisplayName()))))
}

func (ci *ConversationInfo) renderGroup(g api.Group, s model.State) {
	names := make(map[string]string, len(s.Users)+1)
	for _, u := range s.Users {
		names[u.ID] = u.DisplayName()
	}
	if s.AuthUser != nil {
		names[s.AuthUser.ID] = s.AuthUser.DisplayName() + " (you)"
	}
	nameOf := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	_, _ = fmt.Fprintln(ci)
	ci.field("Name", g.Name)
	ci.field("Description", g.Description)
	ci.field("Admin", nameOf(g.Admin))
	created := ""
	if !g.CreatedAt.IsZero() {
		created = g.CreatedAt.Local().Format(time.DateTime)
	}
	ci.field("Created", created)
	ci.field("Members", MemberCount(len(g.Members)))

	members := make([]string, 0, len(g.Members))
	for _, id := range g.Members {
		members = append(members, "   • "+tview.Escape(singleLine(nameOf(id))))
	}
	_, _ = fmt.Fprintln(ci, strings.Join(members, "\n"))
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(singleLine(g.Name))))
}
