package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// Entry is one selectable sidebar row: a user or a group.
type Entry struct {
	User  *api.User
	Group *api.Group
}

// ID returns the user or group id.
func (e Entry) ID() string {
	if e.Group != nil {
		return e.Group.ID
	}
	if e.User != nil {
		return e.User.ID
	}
	return ""
}

// Sidebar lists users and groups, with a filter.
type Sidebar struct {
	*tview.Table
	theme  *ui.Theme
	state  model.State
	filter string
	rows   map[int]Entry
	order  []int
}

// NewSidebar creates the users/groups table.
func NewSidebar(theme *ui.Theme) *Sidebar {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Chats ")
	table.SetTitleColor(theme.TitleColor)

	return &Sidebar{
		Table: table,
		theme: theme,
		rows:  make(map[int]Entry),
	}
}

// Name implements ui.View.
func (s *Sidebar) Name() string { return "Chats" }

// Hints implements ui.View.
func (s *Sidebar) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "n", Description: "New group"},
		{Key: "r", Description: "Reload"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Update re-renders from a state snapshot, keeping the cursor on the same
// entry when it is still visible.
func (s *Sidebar) Update(state model.State) {
	prev, hadPrev := s.SelectedEntry()
	s.state = state
	s.render()
	if hadPrev {
		s.selectID(prev.ID())
	}
}

// SetFilter sets the active filter text and re-renders.
func (s *Sidebar) SetFilter(filter string) {
	s.filter = strings.TrimSpace(filter)
	s.render()
}

// ClearFilter clears the active filter.
func (s *Sidebar) ClearFilter() {
	s.SetFilter("")
}

// Filter returns the active filter text.
func (s *Sidebar) Filter() string { return s.filter }

func (s *Sidebar) render() {
	s.Clear()
	clear(s.rows)
	s.order = s.order[:0]

	row := 0
	section := func(title string) {
		s.SetCell(row, 0, tview.NewTableCell(" "+title).
			SetSelectable(false).
			SetTextColor(s.theme.TableHeaderFg).
			SetBackgroundColor(s.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
		s.SetCell(row, 1, tview.NewTableCell("").SetSelectable(false))
		row++
	}
	placeholder := func(text string) {
		s.SetCell(row, 0, tview.NewTableCell(" "+text).
			SetSelectable(false).
			SetTextColor(s.theme.MutedColor).
			SetExpansion(1))
		s.SetCell(row, 1, tview.NewTableCell("").SetSelectable(false))
		row++
	}
	entry := func(e Entry, name, detail string, active bool) {
		num := "  "
		if n := len(s.order) + 1; n <= 9 {
			num = fmt.Sprintf("%d ", n)
		}
		mark := "  "
		if active {
			mark = "▶ "
		}
		s.SetCell(row, 0, tview.NewTableCell(num+mark+tview.Escape(singleLine(name))).
			SetExpansion(1).
			SetTextColor(s.theme.FgColor))
		s.SetCell(row, 1, tview.NewTableCell(tview.Escape(singleLine(detail))+" ").
			SetAlign(tview.AlignRight).
			SetTextColor(s.theme.MutedColor))
		s.rows[row] = e
		s.order = append(s.order, row)
		row++
	}

	users := s.visibleUsers()
	section(fmt.Sprintf("USERS (%d)", len(users)))
	switch {
	case len(users) > 0:
		for _, u := range users {
			detail := u.Email
			if slices.Contains(s.state.TypingUsers, u.ID) {
				detail = "typing..."
			}
			sel := s.state.SelectedUser != nil && s.state.SelectedUser.ID == u.ID
			entry(Entry{User: &u}, u.DisplayName(), detail, sel)
		}
	case s.state.UsersLoading:
		placeholder("Loading users...")
	default:
		placeholder("No users")
	}

	groups := s.visibleGroups()
	section(fmt.Sprintf("GROUPS (%d)", len(groups)))
	switch {
	case len(groups) > 0:
		for _, g := range groups {
			sel := s.state.SelectedGroup != nil && s.state.SelectedGroup.ID == g.ID
			entry(Entry{Group: &g}, g.Name, MemberCount(len(g.Members)), sel)
		}
	case s.state.GroupsLoading:
		placeholder("Loading groups...")
	case s.filter != "":
		placeholder("No matches")
	default:
		placeholder("No groups yet")
	}

	if s.filter != "" {
		s.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ",
			len(users)+len(groups), len(s.state.Users)+len(s.state.Groups), tview.Escape(s.filter)))
	} else {
		s.SetTitle(" Chats ")
	}

	if len(s.order) > 0 {
		s.Select(s.order[0], 0)
	}
}

func (s *Sidebar) visibleUsers() []api.User {
	var out []api.User
	for _, u := range s.state.Users {
		if s.matches(u.FullName, u.Email) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Sidebar) visibleGroups() []api.Group {
	var out []api.Group
	for _, g := range s.state.Groups {
		if s.matches(g.Name, g.Description) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Sidebar) matches(fields ...string) bool {
	if s.filter == "" {
		return true
	}
	needle := strings.ToLower(s.filter)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// SelectedEntry returns the entry under the cursor.
func (s *Sidebar) SelectedEntry() (Entry, bool) {
	row, _ := s.GetSelection()
	e, ok := s.rows[row]
	return e, ok
}

// EntryByIndex returns the Nth visible entry (1-based).
func (s *Sidebar) EntryByIndex(n int) (Entry, bool) {
	if n < 1 || n > len(s.order) {
		return Entry{}, false
	}
	return s.rows[s.order[n-1]], true
}

// JumpToGroups moves the cursor to the first visible group.
func (s *Sidebar) JumpToGroups() {
	for _, row := range s.order {
		if s.rows[row].Group != nil {
			s.Select(row, 0)
			return
		}
	}
}

func (s *Sidebar) selectID(id string) {
	for _, row := range s.order {
		if s.rows[row].ID() == id {
			s.Select(row, 0)
			return
		}
	}
}

// MemberCount renders a group's member count.
func MemberCount(n int) string {
	return fmt.Sprintf("%d members", n)
}
