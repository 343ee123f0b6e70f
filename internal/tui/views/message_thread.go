package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// MessageThread displays the selected conversation and a composer.
type MessageThread struct {
	*tview.Flex
	theme      *ui.Theme
	messages   *tview.TextView
	composer   *tview.InputField
	title      string
	attachment string
	onSend     func(text string)
	onType     func()
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetChangedFunc(func(text string) {
		if text != "" && mt.onType != nil {
			mt.onType()
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			text := strings.TrimSpace(composer.GetText())
			if text != "" || mt.attachment != "" {
				mt.onSend(text)
			}
		}
	})

	return mt
}

// Name implements ui.View.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}

// Hints implements ui.View.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Close"},
		{Key: ":attach", Description: "Image"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// SetOnSend sets the callback for Enter in the composer. It receives the
// trimmed text; the composer is not cleared until ClearDraft.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetOnKeystroke sets the callback for every edit that leaves text behind.
func (mt *MessageThread) SetOnKeystroke(fn func()) {
	mt.onType = fn
}

// SetAttachment shows name as the pending image. Empty clears it.
func (mt *MessageThread) SetAttachment(name string) {
	mt.attachment = name
	if name == "" {
		mt.composer.SetLabel(" > ")
		return
	}
	mt.composer.SetLabel(fmt.Sprintf(" (image: %s) > ", tview.Escape(singleLine(name))))
}

// Attachment returns the pending image name.
func (mt *MessageThread) Attachment() string {
	return mt.attachment
}

// ClearDraft empties the composer and drops the attachment.
func (mt *MessageThread) ClearDraft() {
	mt.composer.SetText("")
	mt.SetAttachment("")
}

// Update re-renders the thread from a state snapshot.
func (mt *MessageThread) Update(s model.State, now time.Time) {
	mt.title = ThreadTitle(s)
	mt.messages.SetTitle(" " + tview.Escape(mt.title) + " ")
	mt.messages.Clear()
	_, _ = fmt.Fprint(mt.messages, mt.render(s, now))
	mt.messages.ScrollToEnd()
}

func (mt *MessageThread) render(s model.State, now time.Time) string {
	var b strings.Builder
	muted := ui.ColorName(mt.theme.MutedColor)

	loading := (s.SelectedUser != nil && s.MessagesLoading) ||
		(s.SelectedGroup != nil && s.GroupMessagesLoading)
	if loading {
		fmt.Fprintf(&b, "\n [%s]Loading messages...[-]\n", muted)
		return b.String()
	}

	lines := threadLines(s)
	if len(lines) == 0 && s.SelectedUser == nil && s.SelectedGroup == nil {
		fmt.Fprintf(&b, "\n [%s]Select a user or group to start chatting[-]\n", muted)
		return b.String()
	}
	if len(lines) == 0 {
		fmt.Fprintf(&b, "\n [%s]No messages yet[-]\n", muted)
	}
	for _, l := range lines {
		color := mt.theme.TheirsColor
		if l.mine {
			color = mt.theme.MineColor
		}
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [%s]%s[-]\n",
			ui.ColorName(color), tview.Escape(singleLine(l.sender)),
			muted, FormatMessageTime(l.at, now))
		if l.image {
			fmt.Fprintf(&b, "[%s]%s[-]\n", muted, tview.Escape(imageMarker))
		}
		if l.text != "" {
			fmt.Fprintf(&b, "%s\n", tview.Escape(sanitizeForTerminal(l.text)))
		}
		b.WriteByte('\n')
	}
	if t := TypingLine(s); t != "" {
		fmt.Fprintf(&b, "[%s::i]%s[-:-:-]\n", ui.ColorName(mt.theme.TypingColor), tview.Escape(t))
	}
	return b.String()
}

const imageMarker = "[image]"

type line struct {
	sender string
	mine   bool
	at     time.Time
	text   string
	image  bool
}

// threadLines flattens the selected conversation into display lines.
func threadLines(s model.State) []line {
	me := ""
	if s.AuthUser != nil {
		me = s.AuthUser.ID
	}

	switch {
	case s.SelectedUser != nil:
		out := make([]line, 0, len(s.Messages))
		for _, m := range s.Messages {
			l := line{sender: s.SelectedUser.DisplayName(), at: m.CreatedAt, text: m.Text, image: m.Image != ""}
			if m.SenderID == me {
				l.sender, l.mine = "You", true
			}
			out = append(out, l)
		}
		return out
	case s.SelectedGroup != nil:
		out := make([]line, 0, len(s.GroupMessages))
		for _, m := range s.GroupMessages {
			l := line{sender: senderName(m.Sender.User, s.Users), at: m.CreatedAt, text: m.Text, image: m.Image != ""}
			if m.Sender.ID == me {
				l.sender, l.mine = "You", true
			}
			out = append(out, l)
		}
		return out
	}
	return nil
}

// senderName prefers the populated sender, then the user list, then the id.
func senderName(u api.User, users []api.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	if i := slices.IndexFunc(users, func(x api.User) bool { return x.ID == u.ID }); i >= 0 {
		return users[i].DisplayName()
	}
	return u.DisplayName()
}

// ThreadTitle is the header line for the selected conversation.
func ThreadTitle(s model.State) string {
	switch {
	case s.SelectedUser != nil:
		u := s.SelectedUser
		if u.Email != "" && u.FullName != "" {
			return fmt.Sprintf("%s <%s>", singleLine(u.FullName), u.Email)
		}
		return singleLine(u.DisplayName())
	case s.SelectedGroup != nil:
		g := s.SelectedGroup
		return fmt.Sprintf("%s · %s", singleLine(g.Name), MemberCount(len(g.Members)))
	}
	return "Messages"
}

// TypingLine describes who is typing in the selected conversation.
func TypingLine(s model.State) string {
	switch {
	case s.SelectedUser != nil:
		if slices.Contains(s.TypingUsers, s.SelectedUser.ID) {
			return s.SelectedUser.DisplayName() + " is typing..."
		}
	case s.SelectedGroup != nil:
		switch n := len(s.GroupTypingUsers); n {
		case 0:
		case 1:
			return "1 person is typing..."
		default:
			return fmt.Sprintf("%d people are typing...", n)
		}
	}
	return ""
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
