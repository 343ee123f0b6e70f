package views

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

func TestFormatMessageTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"seconds ago", now.Add(-20 * time.Second), "Just now"},
		{"future skew", now.Add(5 * time.Second), "Just now"},
		{"one minute", now.Add(-time.Minute), "1 min ago"},
		{"59 minutes", now.Add(-59*time.Minute - 59*time.Second), "59 min ago"},
		{"hours", now.Add(-3 * time.Hour), "12:30"},
		{"yesterday", now.Add(-30 * time.Hour), "Yesterday 09:30"},
		{"older", now.Add(-72 * time.Hour), "Mar 7 15:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMessageTime(tt.t, now); got != tt.want {
				t.Errorf("FormatMessageTime = %q, want %q", got, tt.want)
			}
		})
	}
}

var (
	me  = api.User{ID: "me", FullName: "Me Myself"}
	ada = api.User{ID: "u2", FullName: "Ada Lovelace", Email: "ada@example.com"}
	bob = api.User{ID: "u3", FullName: "Bob"}
)

func TestTypingLine(t *testing.T) {
	group := &api.Group{ID: "g1", Name: "Team"}
	tests := []struct {
		name  string
		state model.State
		want  string
	}{
		{"nothing selected", model.State{TypingUsers: []string{"u2"}}, ""},
		{"selected user typing", model.State{SelectedUser: &ada, TypingUsers: []string{"u2"}}, "Ada Lovelace is typing..."},
		{"someone else typing", model.State{SelectedUser: &ada, TypingUsers: []string{"u3"}}, ""},
		{"group one", model.State{SelectedGroup: group, GroupTypingUsers: []string{"u2"}}, "1 person is typing..."},
		{"group many", model.State{SelectedGroup: group, GroupTypingUsers: []string{"u2", "u3"}}, "2 people are typing..."},
		{"group none", model.State{SelectedGroup: group}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypingLine(tt.state); got != tt.want {
				t.Errorf("TypingLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThreadTitle(t *testing.T) {
	if got := ThreadTitle(model.State{SelectedUser: &ada}); got != "Ada Lovelace <ada@example.com>" {
		t.Errorf("user title = %q", got)
	}
	g := &api.Group{ID: "g1", Name: "Team", Members: api.Members{"me", "u2", "u3"}}
	if got := ThreadTitle(model.State{SelectedGroup: g}); got != "Team · 3 members" {
		t.Errorf("group title = %q", got)
	}
}

func TestThreadRendersDirectMessages(t *testing.T) {
	now := time.Now()
	mt := NewMessageThread(ui.DefaultTheme())
	out := mt.render(model.State{
		AuthUser:     &me,
		SelectedUser: &ada,
		Messages: []api.Message{
			{ID: "m1", SenderID: "u2", Text: "hello", CreatedAt: now.Add(-2 * time.Minute)},
			{ID: "m2", SenderID: "me", Image: "data:image/png;base64,AA==", CreatedAt: now},
		},
		TypingUsers: []string{"u2"},
	}, now)

	for _, want := range []string{"Ada Lovelace", "hello", "2 min ago", "You", tview.Escape(imageMarker), "Ada Lovelace is typing..."} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "hello") > strings.Index(out, "You") {
		t.Error("messages out of order")
	}
}

func TestThreadRendersGroupSenders(t *testing.T) {
	now := time.Now()
	mt := NewMessageThread(ui.DefaultTheme())
	lines := threadLines(model.State{
		AuthUser:      &me,
		Users:         []api.User{ada, bob},
		SelectedGroup: &api.Group{ID: "g1", Name: "Team"},
		GroupMessages: []api.GroupMessage{
			{ID: "1", Sender: api.UserRef{User: api.User{ID: "u2", FullName: "Ada Lovelace"}}, Text: "populated"},
			{ID: "2", Sender: api.UserRef{User: api.User{ID: "u3"}}, Text: "bare id"},
			{ID: "3", Sender: api.UserRef{User: api.User{ID: "me"}}, Text: "mine"},
		},
	})
	var senders []string
	for _, l := range lines {
		senders = append(senders, l.sender)
	}
	if diff := cmp.Diff([]string{"Ada Lovelace", "Bob", "You"}, senders); diff != "" {
		t.Errorf("senders mismatch (-want +got):\n%s", diff)
	}

	out := mt.render(model.State{SelectedGroup: &api.Group{ID: "g1"}, GroupMessagesLoading: true}, now)
	if !strings.Contains(out, "Loading messages...") {
		t.Errorf("loading render = %q", out)
	}
}

func TestDraftAttachment(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	var sent []string
	mt.SetOnSend(func(text string) { sent = append(sent, text) })

	mt.SetAttachment("cat.png")
	if mt.Attachment() != "cat.png" || !strings.Contains(mt.Composer().GetLabel(), "cat.png") {
		t.Errorf("label = %q", mt.Composer().GetLabel())
	}
	mt.Composer().SetText("hi")
	mt.ClearDraft()
	if mt.Attachment() != "" || mt.Composer().GetText() != "" {
		t.Error("ClearDraft left state behind")
	}
	if len(sent) != 0 {
		t.Errorf("sent = %v, want none", sent)
	}
}

func sidebarTexts(s *Sidebar) []string {
	var out []string
	for row := 0; row < s.GetRowCount(); row++ {
		out = append(out, strings.TrimSpace(s.GetCell(row, 0).Text))
	}
	return out
}

func TestSidebarSectionsAndPlaceholder(t *testing.T) {
	s := NewSidebar(ui.DefaultTheme())
	s.Update(model.State{Users: []api.User{ada, bob}})

	want := []string{"USERS (2)", "1   Ada Lovelace", "2   Bob", "GROUPS (0)", "No groups yet"}
	if diff := cmp.Diff(want, sidebarTexts(s)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	e, ok := s.EntryByIndex(2)
	if !ok || e.User == nil || e.User.ID != "u3" {
		t.Errorf("EntryByIndex(2) = %+v, %v", e, ok)
	}
	if _, ok := s.EntryByIndex(3); ok {
		t.Error("EntryByIndex(3) should be out of range")
	}
}

func TestSidebarFilter(t *testing.T) {
	s := NewSidebar(ui.DefaultTheme())
	s.Update(model.State{
		Users:  []api.User{ada, bob},
		Groups: []api.Group{{ID: "g1", Name: "Lovelace fans", Members: api.Members{"me", "u2"}}},
	})
	s.SetFilter("lovelace")

	e1, _ := s.EntryByIndex(1)
	e2, _ := s.EntryByIndex(2)
	if e1.ID() != "u2" || e2.ID() != "g1" {
		t.Errorf("filtered entries = %q, %q", e1.ID(), e2.ID())
	}
	if _, ok := s.EntryByIndex(3); ok {
		t.Error("Bob should be filtered out")
	}
	if got := s.GetCell(3, 1).Text; !strings.Contains(got, "2 members") {
		t.Errorf("group detail = %q", got)
	}

	s.ClearFilter()
	if _, ok := s.EntryByIndex(3); !ok {
		t.Error("ClearFilter did not restore entries")
	}
}

func TestSidebarKeepsCursor(t *testing.T) {
	s := NewSidebar(ui.DefaultTheme())
	st := model.State{Users: []api.User{ada, bob}}
	s.Update(st)
	s.Select(2, 0)

	st.Users = []api.User{{ID: "u9", FullName: "Zed"}, ada, bob}
	s.Update(st)
	e, ok := s.SelectedEntry()
	if !ok || e.ID() != "u3" {
		t.Errorf("cursor on %+v, want Bob", e)
	}
}

func TestGroupCreateExcludesAuthUser(t *testing.T) {
	gc := NewGroupCreate(ui.DefaultTheme())
	gc.Reset([]api.User{me, ada, bob}, "me")

	// name + two checkboxes
	if n := gc.Form().GetFormItemCount(); n != 3 {
		t.Errorf("form items = %d, want 3", n)
	}

	var got struct {
		name    string
		members []string
	}
	gc.SetOnCreate(func(name string, members []string) {
		got.name, got.members = name, members
	})
	gc.name = "Team"
	gc.picked["u3"] = true
	gc.picked["u2"] = true
	gc.submit()

	if got.name != "Team" {
		t.Errorf("name = %q", got.name)
	}
	if diff := cmp.Diff([]string{"u2", "u3"}, got.members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupCreateNoOtherUsers(t *testing.T) {
	gc := NewGroupCreate(ui.DefaultTheme())
	gc.Reset([]api.User{me}, "me")
	tv, ok := gc.Form().GetFormItem(1).(*tview.TextView)
	if !ok {
		t.Fatalf("item 1 = %T, want placeholder text view", gc.Form().GetFormItem(1))
	}
	if got := tv.GetText(true); got != "No other users available" {
		t.Errorf("placeholder = %q", got)
	}
	if len(gc.Members()) != 0 {
		t.Error("members should be empty")
	}
}

func TestSanitize(t *testing.T) {
	in := "a\u200db\ufe0fc\x1b[31md\te\r\nf"
	if got := sanitizeForTerminal(in); got != "abc[31md    e\nf" {
		t.Errorf("sanitizeForTerminal = %q", got)
	}
	if got := singleLine("  two\n lines "); got != "two lines" {
		t.Errorf("singleLine = %q", got)
	}
}
