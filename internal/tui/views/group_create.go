package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// GroupCreate is the centered form for creating a group.
type GroupCreate struct {
	*tview.Flex
	theme    *ui.Theme
	form     *tview.Form
	name     string
	users    []api.User
	picked   map[string]bool
	onCreate func(name string, members []string)
	onCancel func()
}

// NewGroupCreate creates the group creation modal.
func NewGroupCreate(theme *ui.Theme) *GroupCreate {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Create Group ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.TableCursorBg)
	form.SetButtonTextColor(theme.TableCursorFg)

	inner := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(form, 0, 3, true).
		AddItem(nil, 0, 1, false)
	outer := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(inner, 60, 0, true).
		AddItem(nil, 0, 1, false)

	gc := &GroupCreate{
		Flex:   outer,
		theme:  theme,
		form:   form,
		picked: make(map[string]bool),
	}
	form.SetCancelFunc(gc.cancel)
	return gc
}

// Name implements ui.View.
func (gc *GroupCreate) Name() string { return "New group" }

// Hints implements ui.View.
func (gc *GroupCreate) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Space", Description: "Toggle member"},
		{Key: "Enter", Description: "Confirm"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnCreate sets the callback for the Create button.
func (gc *GroupCreate) SetOnCreate(fn func(name string, members []string)) {
	gc.onCreate = fn
}

// SetOnCancel sets the callback for Cancel and Esc.
func (gc *GroupCreate) SetOnCancel(fn func()) {
	gc.onCancel = fn
}

// Reset rebuilds the form for users, leaving out the signed-in user.
func (gc *GroupCreate) Reset(users []api.User, authUserID string) {
	gc.form.Clear(true)
	gc.name = ""
	gc.users = gc.users[:0]
	clear(gc.picked)

	gc.form.AddInputField("Name", "", 40, nil, func(text string) { gc.name = text })

	for _, u := range users {
		if u.ID == authUserID {
			continue
		}
		gc.users = append(gc.users, u)
	}
	if len(gc.users) == 0 {
		gc.form.AddTextView("Members", "No other users available", 40, 1, false, false)
	}
	for i, u := range gc.users {
		label := ""
		if i == 0 {
			label = "Members"
		}
		id := u.ID
		gc.form.AddCheckbox(label, false, func(checked bool) { gc.picked[id] = checked })
		cb := gc.form.GetFormItem(gc.form.GetFormItemCount() - 1).(*tview.Checkbox)
		cb.SetCheckedString("x")
		cb.SetLabel(padLabel(label) + tview.Escape(singleLine(u.DisplayName())) + " ")
	}

	gc.form.AddButton("Create", gc.submit)
	gc.form.AddButton("Cancel", gc.cancel)
	gc.form.SetFocus(0)
}

// padLabel keeps checkbox names aligned under the "Members" label.
func padLabel(label string) string {
	const width = 9
	for len(label) < width {
		label += " "
	}
	return label
}

// Members returns the picked user ids in list order.
func (gc *GroupCreate) Members() []string {
	var ids []string
	for _, u := range gc.users {
		if gc.picked[u.ID] {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// SetName prefills the name field. Call after Reset.
func (gc *GroupCreate) SetName(name string) {
	if gc.form.GetFormItemCount() == 0 {
		return
	}
	if in, ok := gc.form.GetFormItem(0).(*tview.InputField); ok {
		in.SetText(name)
	}
}

// GroupName returns the typed name, untrimmed.
func (gc *GroupCreate) GroupName() string {
	return gc.name
}

// Form returns the underlying form (for focus management).
func (gc *GroupCreate) Form() *tview.Form {
	return gc.form
}

// FocusTarget implements ui.Focuser.
func (gc *GroupCreate) FocusTarget() tview.Primitive { return gc.form }

func (gc *GroupCreate) submit() {
	if gc.onCreate != nil {
		gc.onCreate(gc.name, gc.Members())
	}
}

func (gc *GroupCreate) cancel() {
	if gc.onCancel != nil {
		gc.onCancel()
	}
}
