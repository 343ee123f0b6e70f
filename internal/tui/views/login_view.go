package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// LoginView is the email/password form shown when no valid cookie exists.
type LoginView struct {
	*tview.Flex
	theme    *ui.Theme
	form     *tview.Form
	status   *tview.TextView
	email    string
	password string
	onSubmit func(email, password string)
}

// NewLoginView creates the login form.
func NewLoginView(theme *ui.Theme) *LoginView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Sign in ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.TableCursorBg)
	form.SetButtonTextColor(theme.TableCursorFg)

	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	status.SetBackgroundColor(theme.BgColor)

	column := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(form, 9, 0, true).
		AddItem(status, 2, 0, false).
		AddItem(nil, 0, 1, false)
	outer := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(column, 50, 0, true).
		AddItem(nil, 0, 1, false)

	lv := &LoginView{
		Flex:   outer,
		theme:  theme,
		form:   form,
		status: status,
	}

	form.AddInputField("Email", "", 32, nil, func(text string) { lv.email = text })
	form.AddPasswordField("Password", "", 32, '*', func(text string) { lv.password = text })
	form.AddButton("Login", lv.submit)
	return lv
}

// Name implements ui.View.
func (lv *LoginView) Name() string { return "Login" }

// Hints implements ui.View.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Login"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// SetOnSubmit sets the callback for the Login button.
func (lv *LoginView) SetOnSubmit(fn func(email, password string)) {
	lv.onSubmit = fn
}

// Prefill sets the email field, e.g. from the last successful login.
func (lv *LoginView) Prefill(email string) {
	lv.email = email
	if item, ok := lv.form.GetFormItemByLabel("Email").(*tview.InputField); ok {
		item.SetText(email)
	}
}

// ShowMessage displays a status line under the form.
func (lv *LoginView) ShowMessage(msg string) {
	lv.status.Clear()
	_, _ = fmt.Fprintf(lv.status, "[%s]%s[-]", ui.ColorName(lv.theme.FgColor), tview.Escape(msg))
}

// ShowError displays an error line under the form.
func (lv *LoginView) ShowError(msg string) {
	lv.status.Clear()
	_, _ = fmt.Fprintf(lv.status, "[%s]%s[-]", ui.ColorName(lv.theme.FlashErrColor), tview.Escape(msg))
}

// ClearPassword empties the password field.
func (lv *LoginView) ClearPassword() {
	lv.password = ""
	if item, ok := lv.form.GetFormItemByLabel("Password").(*tview.InputField); ok {
		item.SetText("")
	}
}

// Form returns the underlying form (for focus management).
func (lv *LoginView) Form() *tview.Form {
	return lv.form
}

// FocusTarget implements ui.Focuser.
func (lv *LoginView) FocusTarget() tview.Primitive { return lv.form }

func (lv *LoginView) submit() {
	if lv.email == "" || lv.password == "" {
		lv.ShowError("Email and password are required")
		return
	}
	if lv.onSubmit != nil {
		lv.ShowMessage("Signing in...")
		lv.onSubmit(lv.email, lv.password)
	}
}
