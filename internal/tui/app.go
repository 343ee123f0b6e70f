package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/attach"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/socket"
	"github.com/matheus3301/chatterm/internal/status"
	"github.com/matheus3301/chatterm/internal/store"
	"github.com/matheus3301/chatterm/internal/tui/keys"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
	"github.com/matheus3301/chatterm/internal/tui/views"
)

// Page names.
const (
	pageLogin   = "login"
	pageChats   = "chats"
	pageDetails = "details"
	pageHelp    = "help"
	pageGroup   = "group"
)

// Connector is the real-time channel's connection control.
type Connector interface {
	Connect(ctx context.Context, userID string) error
	Disconnect()
}

// Prefs persists small UI preferences between runs.
type Prefs interface {
	GetPref(key string) (string, error)
	SetPref(key, value string) error
}

// CookieClearer drops stored credentials.
type CookieClearer interface {
	Clear() error
}

// Options wires the App to the rest of the client.
type Options struct {
	Profile string
	Backend string
	VM      *model.ViewModel
	Socket  Connector
	Bus     *bus.Bus
	Status  *status.Machine
	Prefs   Prefs
	Jar     CookieClearer
	Logger  *zap.Logger
	// Theme defaults to ui.DefaultTheme.
	Theme *ui.Theme
	// Screen defaults to the terminal.
	Screen tcell.Screen
}

// App is the main TUI application shell.
type App struct {
	opts   Options
	logger *zap.Logger
	app    *tview.Application
	theme  *ui.Theme
	vm     *model.ViewModel

	pages       *ui.Pages
	crumbs      *ui.Crumbs
	menu        *ui.Menu
	profileInfo *ui.ProfileInfo
	flashBar    *ui.FlashBar
	prompt      *ui.Prompt
	root        *tview.Flex
	statusBar   *views.StatusBar

	sidebar  *views.Sidebar
	thread   *views.MessageThread
	details  *views.ConversationInfo
	help     *views.HelpView
	group    *views.GroupCreate
	login    *views.LoginView
	registry *keys.Registry

	pending   *attach.Image
	typingOff func()
	promptOn  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := opts.Theme
	if theme == nil {
		theme = ui.DefaultTheme()
	}

	a := &App{
		opts:        opts,
		logger:      logger.Named("tui"),
		app:         tview.NewApplication(),
		theme:       theme,
		vm:          opts.VM,
		pages:       ui.NewPages(),
		crumbs:      ui.NewCrumbs(theme),
		menu:        ui.NewMenu(theme),
		profileInfo: ui.NewProfileInfo(theme),
		flashBar:    ui.NewFlashBar(theme),
		prompt:      ui.NewPrompt(theme),
		statusBar:   views.NewStatusBar(theme),
		sidebar:     views.NewSidebar(theme),
		thread:      views.NewMessageThread(theme),
		details:     views.NewConversationInfo(theme),
		help:        views.NewHelpView(theme),
		group:       views.NewGroupCreate(theme),
		login:       views.NewLoginView(theme),
		registry:    keys.NewRegistry(),
		ctx:         ctx,
		cancel:      cancel,
	}

	if opts.Screen != nil {
		a.app.SetScreen(opts.Screen)
	}
	a.statusBar.SetProfile(opts.Profile)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: a.Stop,
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "?:help", Visible: true,
		Handler: func() { a.push(pageHelp) },
	})
	a.registry.AddGlobal("command", &keys.Action{
		Rune: ':', Key: tcell.KeyRune,
		Description: ":cmd", Visible: true,
		Handler: func() { a.activatePrompt(ui.PromptCommand) },
	})

	a.registry.AddView(pageChats, "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "/:filter", Visible: true,
		Handler: func() { a.activatePrompt(ui.PromptFilter) },
	})
	a.registry.AddView(pageChats, "new-group", &keys.Action{
		Rune: 'n', Key: tcell.KeyRune,
		Description: "n:new group", Visible: true,
		Handler: func() { a.openGroupCreate("") },
	})
	a.registry.AddView(pageChats, "reload", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "r:reload", Visible: true,
		Handler: func() { go a.reload() },
	})
	a.registry.AddView(pageChats, "compose", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "i:compose", Visible: true,
		Handler: a.focusComposer,
	})
	a.registry.AddView(pageChats, "details", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:details", Visible: true,
		Handler: func() {
			s := a.vm.Snapshot()
			if s.SelectedUser == nil && s.SelectedGroup == nil {
				return
			}
			a.details.Update(s)
			a.push(pageDetails)
		},
	})
	for n := 1; n <= 9; n++ {
		a.registry.AddView(pageChats, "jump-"+string(rune('0'+n)), &keys.Action{
			Rune: rune('0' + n), Key: tcell.KeyRune,
			Handler: func() {
				if e, ok := a.sidebar.EntryByIndex(n); ok {
					a.open(e)
				}
			},
		})
	}
}

func (a *App) setupCallbacks() {
	a.sidebar.SetSelectedFunc(func(_, _ int) {
		if e, ok := a.sidebar.SelectedEntry(); ok {
			a.open(e)
		}
	})

	a.thread.SetOnKeystroke(a.vm.Keystroke)
	a.thread.SetOnSend(a.send)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.deactivatePrompt()
		switch mode {
		case ui.PromptCommand:
			a.execute(ParseCommand(text))
		case ui.PromptFilter:
			a.sidebar.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(a.deactivatePrompt)

	a.group.SetOnCreate(func(name string, members []string) {
		go func() {
			if _, err := a.vm.CreateGroup(a.ctx, name, members); err != nil {
				a.app.QueueUpdateDraw(a.renderFlash)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.pop()
				a.render()
			})
		}()
	})
	a.group.SetOnCancel(a.pop)

	a.login.SetOnSubmit(func(email, password string) {
		go a.doLogin(email, password)
	})

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack)
		a.updateHints()
	})
	a.crumbs.SetLabeler(func(page string) string {
		if v, ok := a.pages.View(page); ok {
			return v.Name()
		}
		return page
	})
}

func (a *App) setupLayout() {
	chats := &chatsView{
		Flex: tview.NewFlex().
			AddItem(a.sidebar, 38, 0, true).
			AddItem(a.thread, 0, 1, false),
		a: a,
	}

	a.pages.Add(pageLogin, a.login)
	a.pages.Add(pageChats, chats)
	a.pages.Add(pageDetails, a.details)
	a.pages.Add(pageHelp, a.help)
	a.pages.AddOverlay(pageGroup, a.group)

	header := tview.NewFlex().
		AddItem(a.profileInfo, 40, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 16, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.capture)
}

func (a *App) capture(event *tcell.EventKey) *tcell.EventKey {
	if a.promptOn {
		return event
	}
	current := a.pages.Current()

	if event.Key() == tcell.KeyEscape {
		return a.escape(current, event)
	}

	// Text inputs and forms get every other key.
	switch a.app.GetFocus().(type) {
	case *tview.InputField, *tview.Checkbox, *tview.Button, *tview.TextArea:
		return event
	}
	if current == pageLogin || current == pageGroup {
		return event
	}

	if a.registry.HandleEvent(current, event) {
		return nil
	}
	return event
}

func (a *App) escape(current string, event *tcell.EventKey) *tcell.EventKey {
	switch current {
	case pageLogin:
		return event
	case pageGroup, pageHelp, pageDetails:
		a.pop()
		return nil
	case pageChats:
		switch a.app.GetFocus() {
		case a.thread.Composer():
			a.vm.StopTyping()
			a.app.SetFocus(a.thread.Messages())
		case a.thread.Messages():
			a.closeConversation()
		default:
			if a.sidebar.Filter() != "" {
				a.sidebar.ClearFilter()
			}
		}
		return nil
	}
	return event
}

// chatsView is the sidebar and thread side by side.
type chatsView struct {
	*tview.Flex
	a *App
}

func (c *chatsView) selected() bool {
	s := c.a.vm.Snapshot()
	return s.SelectedUser != nil || s.SelectedGroup != nil
}

func (c *chatsView) Name() string {
	if c.selected() {
		return c.a.thread.Name()
	}
	return c.a.sidebar.Name()
}

func (c *chatsView) Hints() []ui.MenuHint {
	if c.selected() {
		return c.a.thread.Hints()
	}
	return c.a.sidebar.Hints()
}

func (c *chatsView) FocusTarget() tview.Primitive { return c.a.sidebar }

func (a *App) push(page string) {
	a.pages.Push(page)
	a.focusPage(page)
}

func (a *App) pop() {
	if a.pages.Pop() != "" {
		a.focusPage(a.pages.Current())
	}
}

func (a *App) focusPage(page string) {
	if v, ok := a.pages.View(page); ok {
		a.app.SetFocus(ui.FocusTarget(v))
	}
}

func (a *App) updateHints() {
	if v, ok := a.pages.CurrentView(); ok {
		a.menu.Update(v.Hints())
	}
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	if a.pages.Current() == pageLogin && mode == ui.PromptFilter {
		return
	}
	a.promptOn = true
	a.prompt.Activate(mode)
	if mode == ui.PromptFilter {
		a.prompt.SetText(a.sidebar.Filter())
	}
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) deactivatePrompt() {
	a.promptOn = false
	a.root.ResizeItem(a.prompt, 0, 0)
	a.focusPage(a.pages.Current())
}

func (a *App) focusComposer() {
	s := a.vm.Snapshot()
	if s.SelectedUser == nil && s.SelectedGroup == nil {
		return
	}
	a.app.SetFocus(a.thread.Composer())
}

// open selects a sidebar entry and loads its conversation.
func (a *App) open(e views.Entry) {
	a.clearAttachment()
	a.thread.Composer().SetText("")
	go func() {
		var pref string
		var err error
		switch {
		case e.User != nil:
			err = a.vm.SelectUser(a.ctx, *e.User)
			pref = "u:" + e.User.ID
		case e.Group != nil:
			err = a.vm.SelectGroup(a.ctx, *e.Group)
			pref = "g:" + e.Group.ID
		}
		if errors.Is(err, model.ErrSuperseded) {
			return
		}
		a.savePref(store.PrefLastConversation, pref)
		a.app.QueueUpdateDraw(func() {
			a.render()
			a.crumbs.Update(a.pages.Stack())
			a.updateHints()
			a.app.SetFocus(a.thread.Messages())
		})
	}()
}

func (a *App) closeConversation() {
	a.vm.CloseConversation()
	a.clearAttachment()
	a.thread.Composer().SetText("")
	a.savePref(store.PrefLastConversation, "")
	a.render()
	a.crumbs.Update(a.pages.Stack())
	a.updateHints()
	a.app.SetFocus(a.sidebar)
}

func (a *App) send(text string) {
	s := a.vm.Snapshot()
	draft := api.Draft{Text: text}
	if a.pending != nil {
		draft.Image = a.pending.DataURL
	}
	go func() {
		var err error
		switch {
		case s.SelectedUser != nil:
			err = a.vm.SendMessage(a.ctx, draft)
		case s.SelectedGroup != nil:
			err = a.vm.SendGroupMessage(a.ctx, draft)
		default:
			return
		}
		a.app.QueueUpdateDraw(func() {
			if err == nil && sameConversation(s, a.vm.Snapshot()) {
				a.pending = nil
				a.thread.ClearDraft()
			}
			a.render()
		})
	}()
}

func sameConversation(a, b model.State) bool {
	switch {
	case a.SelectedUser != nil:
		return b.SelectedUser != nil && b.SelectedUser.ID == a.SelectedUser.ID
	case a.SelectedGroup != nil:
		return b.SelectedGroup != nil && b.SelectedGroup.ID == a.SelectedGroup.ID
	}
	return false
}

func (a *App) attach(path string) {
	s := a.vm.Snapshot()
	if s.SelectedUser == nil && s.SelectedGroup == nil {
		a.vm.Flash.Warn("Open a conversation first")
		return
	}
	img, err := attach.Load(path)
	switch {
	case errors.Is(err, attach.ErrNotImage):
		a.vm.Flash.Error("Please select an image file")
		return
	case err != nil:
		a.vm.Flash.Err(err)
		return
	}
	a.pending = img
	a.thread.SetAttachment(img.Name)
	a.vm.Flash.Info("Attached " + img.Name)
	a.app.SetFocus(a.thread.Composer())
}

func (a *App) clearAttachment() {
	a.pending = nil
	a.thread.SetAttachment("")
}

// Run starts the TUI application and blocks until it stops.
func (a *App) Run() error {
	go a.boot()
	go a.watch()
	a.pages.Reset(pageLogin)
	a.login.ShowMessage("Checking session...")
	return a.app.Run()
}

func (a *App) boot() {
	if email, err := a.opts.Prefs.GetPref(store.PrefLastEmail); err == nil && email != "" {
		a.app.QueueUpdateDraw(func() { a.login.Prefill(email) })
	}

	u, err := a.vm.CheckAuth(a.ctx)
	if err != nil {
		if !api.IsUnauthorized(err) {
			a.logger.Warn("auth check failed", zap.Error(err))
		}
		a.setState(status.AuthRequired)
		a.app.QueueUpdateDraw(func() {
			if api.IsUnauthorized(err) {
				a.login.ShowMessage("Sign in to continue")
			} else {
				a.login.ShowError(api.UserMessage(err, "Backend unreachable"))
			}
			a.pages.Reset(pageLogin)
			a.focusPage(pageLogin)
		})
		return
	}
	a.enter(u)
}

func (a *App) doLogin(email, password string) {
	u, err := a.vm.Login(a.ctx, email, password)
	if err != nil {
		a.app.QueueUpdateDraw(func() {
			a.login.ShowError(api.UserMessage(err, "Login failed"))
			a.login.ClearPassword()
			a.renderFlash()
		})
		return
	}
	a.savePref(store.PrefLastEmail, email)
	a.app.QueueUpdateDraw(a.login.ClearPassword)
	a.enter(u)
}

// enter runs once the user is known: connect, load, restore the last
// conversation and show the chats page.
func (a *App) enter(u *api.User) {
	a.connect(u.ID)
	if a.typingOff == nil {
		a.typingOff = a.vm.SubscribeToTyping()
	}

	a.reload()

	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetUser(u.DisplayName())
		a.pages.Reset(pageChats)
		a.focusPage(pageChats)
		a.render()
	})

	a.restoreConversation()
}

func (a *App) connect(userID string) {
	a.setState(status.Connecting)
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()
	if err := a.opts.Socket.Connect(ctx, userID); err != nil {
		a.logger.Warn("socket connect failed", zap.Error(err))
		a.setState(status.Offline)
		a.vm.Flash.Warn("Real-time updates unavailable, :reconnect to retry")
		return
	}
	a.setState(status.Online)
}

// reload fetches users and groups concurrently.
func (a *App) reload() {
	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error { return a.vm.GetUsers(ctx) })
	g.Go(func() error { return a.vm.GetGroups(ctx) })
	if err := g.Wait(); err != nil {
		a.logger.Debug("reload incomplete", zap.Error(err))
	}
}

func (a *App) restoreConversation() {
	last, err := a.opts.Prefs.GetPref(store.PrefLastConversation)
	if err != nil || last == "" {
		return
	}
	s := a.vm.Snapshot()
	kind, id, _ := strings.Cut(last, ":")
	for _, u := range s.Users {
		if kind == "u" && u.ID == id {
			a.app.QueueUpdateDraw(func() { a.open(views.Entry{User: &u}) })
			return
		}
	}
	for _, g := range s.Groups {
		if kind == "g" && g.ID == id {
			a.app.QueueUpdateDraw(func() { a.open(views.Entry{Group: &g}) })
			return
		}
	}
}

func (a *App) reconnect() {
	s := a.vm.Snapshot()
	if s.AuthUser == nil {
		a.vm.Flash.Warn("Not signed in")
		return
	}
	go func() {
		a.opts.Socket.Disconnect()
		if a.opts.Status.Current() == status.Online {
			a.setState(status.Offline)
		}
		a.connect(s.AuthUser.ID)
		if a.opts.Status.Current() == status.Online {
			// Rejoin the open group's room on the fresh connection.
			if a.vm.Snapshot().SelectedGroup != nil {
				a.vm.SubscribeToGroupMessages()
			}
			a.vm.Flash.Info("Reconnected")
		}
		a.app.QueueUpdateDraw(a.render)
	}()
}

func (a *App) logout() {
	go func() {
		if err := a.vm.Logout(a.ctx); err != nil {
			a.app.QueueUpdateDraw(a.renderFlash)
			return
		}
		if a.typingOff != nil {
			a.typingOff()
			a.typingOff = nil
		}
		a.opts.Socket.Disconnect()
		if a.opts.Jar != nil {
			if err := a.opts.Jar.Clear(); err != nil {
				a.logger.Warn("clear cookies failed", zap.Error(err))
			}
		}
		a.savePref(store.PrefLastConversation, "")
		a.setState(status.AuthRequired)
		a.app.QueueUpdateDraw(func() {
			a.clearAttachment()
			a.statusBar.SetUser("")
			a.login.ShowMessage("Signed out")
			a.pages.Reset(pageLogin)
			a.focusPage(pageLogin)
			a.render()
		})
	}()
}

func (a *App) openGroupCreate(name string) {
	s := a.vm.Snapshot()
	authID := ""
	if s.AuthUser != nil {
		authID = s.AuthUser.ID
	}
	a.group.Reset(s.Users, authID)
	a.group.SetName(name)
	a.push(pageGroup)
}

func (a *App) setState(to status.State) {
	if a.opts.Status.Current() == to {
		return
	}
	if err := a.opts.Status.Transition(to); err != nil {
		a.logger.Debug("state transition skipped", zap.Error(err))
	}
}

func (a *App) savePref(key, value string) {
	if err := a.opts.Prefs.SetPref(key, value); err != nil {
		a.logger.Warn("save pref failed", zap.String("key", key), zap.Error(err))
	}
}

// watch turns model, flash, bus and clock events into redraws.
func (a *App) watch() {
	conns, unsubConns := a.opts.Bus.Subscribe(socket.KindNamespace, 16)
	defer unsubConns()
	changes, unsubChanges := a.opts.Bus.SubscribeExact(status.KindChanged, 16)
	defer unsubChanges()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var ticks int

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.vm.RefreshCh():
			a.app.QueueUpdateDraw(a.render)
		case <-a.vm.Flash.Watch():
			a.app.QueueUpdateDraw(a.renderFlash)
		case evt := <-conns:
			a.onBusEvent(evt)
		case evt := <-changes:
			a.onBusEvent(evt)
		case <-ticker.C:
			ticks++
			full := ticks%30 == 0
			a.app.QueueUpdateDraw(func() {
				a.renderFlash()
				a.statusBar.SetState(a.opts.Status.Current())
				// Relative timestamps age.
				if full {
					a.render()
				}
			})
		}
	}
}

func (a *App) onBusEvent(evt bus.Event) {
	switch evt.Kind {
	case socket.KindDisconnected:
		a.setState(status.Offline)
		a.vm.Flash.Warn("Disconnected from server, :reconnect to retry")
	case status.KindChanged:
		if c, ok := evt.Payload.(status.Change); ok {
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetState(c.To)
				a.renderProfile()
			})
		}
	}
}

// render redraws every view from one snapshot. Must run on the UI goroutine.
func (a *App) render() {
	s := a.vm.Snapshot()
	a.sidebar.Update(s)
	a.thread.Update(s, time.Now())
	if a.pages.Current() == pageDetails {
		a.details.Update(s)
	}
	a.renderProfile()
	a.renderFlash()
}

func (a *App) renderProfile() {
	s := a.vm.Snapshot()
	user := ""
	if s.AuthUser != nil {
		user = s.AuthUser.DisplayName()
	}
	a.profileInfo.Update(&ui.ProfileData{
		Profile:    a.opts.Profile,
		User:       user,
		Status:     a.opts.Status.Current().Label(),
		Backend:    a.opts.Backend,
		UserCount:  len(s.Users),
		GroupCount: len(s.Groups),
	})
}

func (a *App) renderFlash() {
	a.flashBar.Update(a.vm.Flash.Message())
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
