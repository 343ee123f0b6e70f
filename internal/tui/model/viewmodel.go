package model

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/socket"
	"github.com/matheus3301/chatterm/internal/typing"
)

var (
	// ErrNoSelection is returned by conversation operations when nothing is selected.
	ErrNoSelection = errors.New("no conversation selected")
	// ErrInvalidGroup is returned by CreateGroup when the name or members are missing.
	ErrInvalidGroup = errors.New("group needs a name and at least one member")
	// ErrEmptyDraft is returned when there is neither text nor an image to send.
	ErrEmptyDraft = errors.New("nothing to send")
	// ErrSuperseded is returned when another selection replaced the
	// conversation an operation was started for. Its results are dropped.
	ErrSuperseded = errors.New("conversation changed")
)

// Backend is the subset of the REST client the view model uses.
type Backend interface {
	CheckAuth(ctx context.Context) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	ListUsers(ctx context.Context) ([]api.User, error)
	ListMessages(ctx context.Context, userID string) ([]api.Message, error)
	SendMessage(ctx context.Context, userID string, d api.Draft) (*api.Message, error)
	ListGroups(ctx context.Context) ([]api.Group, error)
	CreateGroup(ctx context.Context, req api.CreateGroupRequest) (*api.Group, error)
	ListGroupMessages(ctx context.Context, groupID string) ([]api.GroupMessage, error)
	SendGroupMessage(ctx context.Context, groupID string, d api.Draft) (*api.GroupMessage, error)
}

// Socket is the real-time channel as seen by the view model.
type Socket interface {
	Emit(event string, data any) error
	On(event string, fn func(json.RawMessage)) func()
}

// Options configures a ViewModel.
type Options struct {
	Backend Backend
	// Socket may be nil; real-time operations are then no-ops.
	Socket          Socket
	Logger          *zap.Logger
	TypingWindow    time.Duration
	RemoteTypingTTL time.Duration
}

// State is a point-in-time copy of everything the views render.
type State struct {
	AuthUser      *api.User
	Users         []api.User
	Groups        []api.Group
	Messages      []api.Message
	GroupMessages []api.GroupMessage

	SelectedUser  *api.User
	SelectedGroup *api.Group

	TypingUsers      []string
	GroupTypingUsers []string

	UsersLoading         bool
	GroupsLoading        bool
	MessagesLoading      bool
	GroupMessagesLoading bool
}

// IsTyping reports whether anyone is typing to us one-to-one.
func (s State) IsTyping() bool { return len(s.TypingUsers) > 0 }

// ViewModel is the chat store: it caches backend state, tracks the selected
// conversation and its scoped subscriptions, and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex
	// selMu serializes selection changes with subscription setup.
	selMu sync.Mutex
	// selGen counts selection changes. Guarded by mu.
	selGen uint64

	backend Backend
	socket  Socket
	logger  *zap.Logger
	Flash   *Flash

	authUser      *api.User
	users         []api.User
	groups        []api.Group
	messages      []api.Message
	groupMessages []api.GroupMessage
	selectedUser  *api.User
	selectedGroup *api.Group

	usersLoading         bool
	groupsLoading        bool
	messagesLoading      bool
	groupMessagesLoading bool

	typingUsers      *typing.Set
	groupTypingUsers *typing.Set
	debouncer        *typing.Debouncer

	messageSub     func()
	groupSub       func()
	groupSubID     string
	groupTypingSub func()

	refreshCh chan struct{}
}

// NewViewModel creates a view model over the backend and socket.
func NewViewModel(opts Options) *ViewModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vm := &ViewModel{
		backend:   opts.Backend,
		socket:    opts.Socket,
		logger:    logger.Named("chat"),
		Flash:     NewFlash(),
		refreshCh: make(chan struct{}, 1),
	}
	vm.typingUsers = typing.NewSet(opts.RemoteTypingTTL, vm.signalRefresh)
	vm.groupTypingUsers = typing.NewSet(opts.RemoteTypingTTL, vm.signalRefresh)
	vm.debouncer = typing.NewDebouncer(opts.TypingWindow, vm.typingStarted, vm.typingStopped)
	return vm
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (vm *ViewModel) Snapshot() State {
	vm.mu.RLock()
	s := State{
		AuthUser:             clonePtr(vm.authUser),
		Users:                append([]api.User(nil), vm.users...),
		Groups:               append([]api.Group(nil), vm.groups...),
		Messages:             append([]api.Message(nil), vm.messages...),
		GroupMessages:        append([]api.GroupMessage(nil), vm.groupMessages...),
		SelectedUser:         clonePtr(vm.selectedUser),
		SelectedGroup:        clonePtr(vm.selectedGroup),
		UsersLoading:         vm.usersLoading,
		GroupsLoading:        vm.groupsLoading,
		MessagesLoading:      vm.messagesLoading,
		GroupMessagesLoading: vm.groupMessagesLoading,
	}
	vm.mu.RUnlock()
	s.TypingUsers = vm.typingUsers.IDs()
	s.GroupTypingUsers = vm.groupTypingUsers.IDs()
	return s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (vm *ViewModel) setFlag(flag *bool, v bool) {
	vm.mu.Lock()
	*flag = v
	vm.mu.Unlock()
	vm.signalRefresh()
}

// GetUsers loads the sidebar's user list.
func (vm *ViewModel) GetUsers(ctx context.Context) error {
	vm.setFlag(&vm.usersLoading, true)
	defer vm.setFlag(&vm.usersLoading, false)

	users, err := vm.backend.ListUsers(ctx)
	if err != nil {
		vm.logger.Warn("load users failed", zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Failed to load users"))
		return err
	}
	vm.mu.Lock()
	vm.users = users
	vm.mu.Unlock()
	return nil
}

// GetGroups loads the groups the auth user belongs to.
func (vm *ViewModel) GetGroups(ctx context.Context) error {
	vm.setFlag(&vm.groupsLoading, true)
	defer vm.setFlag(&vm.groupsLoading, false)

	groups, err := vm.backend.ListGroups(ctx)
	if err != nil {
		vm.logger.Warn("load groups failed", zap.Error(err))
		vm.Flash.Error("Failed to load groups")
		return err
	}
	vm.mu.Lock()
	vm.groups = groups
	vm.mu.Unlock()
	return nil
}

// RefreshGroups reloads groups quietly: no loading flag, no flash.
func (vm *ViewModel) RefreshGroups(ctx context.Context) error {
	groups, err := vm.backend.ListGroups(ctx)
	if err != nil {
		vm.logger.Warn("refresh groups failed", zap.Error(err))
		return err
	}
	vm.mu.Lock()
	vm.groups = groups
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// GetMessages replaces the one-to-one thread with the history for userID.
// The result is dropped with ErrSuperseded if the selection changes while
// the request is in flight.
func (vm *ViewModel) GetMessages(ctx context.Context, userID string) error {
	return vm.loadMessages(ctx, userID, vm.generation())
}

func (vm *ViewModel) loadMessages(ctx context.Context, userID string, gen uint64) error {
	vm.mu.Lock()
	if vm.selGen == gen {
		vm.messagesLoading = true
	}
	vm.mu.Unlock()
	vm.signalRefresh()

	msgs, err := vm.backend.ListMessages(ctx, userID)

	vm.mu.Lock()
	current := vm.selGen == gen
	if current {
		vm.messagesLoading = false
		if err == nil {
			vm.messages = msgs
		}
	}
	vm.mu.Unlock()
	vm.signalRefresh()

	switch {
	case !current:
		vm.logger.Debug("dropping stale messages", zap.String("user", userID))
		return ErrSuperseded
	case err != nil:
		vm.logger.Warn("load messages failed", zap.String("user", userID), zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Failed to load messages"))
		return err
	}
	return nil
}

// SendMessage posts d to the selected user and appends the stored message.
// Text is trimmed; a draft with no text and no image is not sent.
func (vm *ViewModel) SendMessage(ctx context.Context, d api.Draft) error {
	vm.mu.RLock()
	sel, gen := vm.selectedUser, vm.selGen
	vm.mu.RUnlock()
	if sel == nil {
		return ErrNoSelection
	}
	if d.Empty() {
		return ErrEmptyDraft
	}
	vm.debouncer.Flush()

	msg, err := vm.backend.SendMessage(ctx, sel.ID, d.Trimmed())
	if err != nil {
		vm.logger.Warn("send message failed", zap.String("user", sel.ID), zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Failed to send message"))
		return err
	}
	vm.mu.Lock()
	if vm.selGen == gen {
		vm.messages = append(vm.messages, *msg)
	}
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// SubscribeToMessages listens for messages from the currently selected user.
func (vm *ViewModel) SubscribeToMessages() {
	vm.mu.RLock()
	sel, gen := vm.selectedUser, vm.selGen
	vm.mu.RUnlock()
	if sel == nil || vm.socket == nil {
		return
	}
	vm.UnsubscribeFromMessages()

	senderID := sel.ID
	remove := vm.socket.On(socket.EventNewMessage, func(raw json.RawMessage) {
		var m api.Message
		if err := json.Unmarshal(raw, &m); err != nil {
			vm.logger.Debug("bad newMessage payload", zap.Error(err))
			return
		}
		if m.SenderID != senderID {
			return
		}
		vm.mu.Lock()
		if vm.selGen == gen {
			vm.messages = append(vm.messages, m)
		}
		vm.mu.Unlock()
		vm.signalRefresh()
	})

	vm.mu.Lock()
	vm.messageSub = remove
	vm.mu.Unlock()
}

// UnsubscribeFromMessages removes the newMessage listener.
func (vm *ViewModel) UnsubscribeFromMessages() {
	vm.mu.Lock()
	remove := vm.messageSub
	vm.messageSub = nil
	vm.mu.Unlock()
	if remove != nil {
		remove()
	}
}

// GetGroupMessages replaces the group thread with the history for groupID.
// Like GetMessages, a result that arrives after a selection change is dropped.
func (vm *ViewModel) GetGroupMessages(ctx context.Context, groupID string) error {
	return vm.loadGroupMessages(ctx, groupID, vm.generation())
}

func (vm *ViewModel) loadGroupMessages(ctx context.Context, groupID string, gen uint64) error {
	vm.mu.Lock()
	if vm.selGen == gen {
		vm.groupMessagesLoading = true
	}
	vm.mu.Unlock()
	vm.signalRefresh()

	msgs, err := vm.backend.ListGroupMessages(ctx, groupID)

	vm.mu.Lock()
	current := vm.selGen == gen
	if current {
		vm.groupMessagesLoading = false
		if err == nil {
			vm.groupMessages = msgs
		}
	}
	vm.mu.Unlock()
	vm.signalRefresh()

	switch {
	case !current:
		vm.logger.Debug("dropping stale group messages", zap.String("group", groupID))
		return ErrSuperseded
	case err != nil:
		vm.logger.Warn("load group messages failed", zap.String("group", groupID), zap.Error(err))
		vm.Flash.Error("Failed to load group messages")
		return err
	}
	return nil
}

// SendGroupMessage posts d to the selected group and appends the stored message.
func (vm *ViewModel) SendGroupMessage(ctx context.Context, d api.Draft) error {
	vm.mu.RLock()
	sel, gen := vm.selectedGroup, vm.selGen
	vm.mu.RUnlock()
	if sel == nil {
		return ErrNoSelection
	}
	if d.Empty() {
		return ErrEmptyDraft
	}
	vm.debouncer.Flush()

	msg, err := vm.backend.SendGroupMessage(ctx, sel.ID, d.Trimmed())
	if err != nil {
		vm.logger.Warn("send group message failed", zap.String("group", sel.ID), zap.Error(err))
		vm.Flash.Error("Failed to send group message")
		return err
	}
	vm.mu.Lock()
	if vm.selGen == gen {
		vm.groupMessages = append(vm.groupMessages, *msg)
	}
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// SubscribeToGroupMessages joins the selected group's room and listens for
// its messages.
func (vm *ViewModel) SubscribeToGroupMessages() {
	vm.mu.RLock()
	sel, gen := vm.selectedGroup, vm.selGen
	vm.mu.RUnlock()
	if sel == nil || vm.socket == nil {
		return
	}
	vm.UnsubscribeFromGroupMessages()

	vm.emit(socket.EventJoinGroup, sel.ID)
	remove := vm.socket.On(socket.GroupMessageEvent(sel.ID), func(raw json.RawMessage) {
		var m api.GroupMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			vm.logger.Debug("bad group message payload", zap.Error(err))
			return
		}
		vm.mu.Lock()
		if vm.selGen == gen {
			vm.groupMessages = append(vm.groupMessages, m)
		}
		vm.mu.Unlock()
		vm.signalRefresh()
	})

	vm.mu.Lock()
	vm.groupSub = remove
	vm.groupSubID = sel.ID
	vm.mu.Unlock()
}

// UnsubscribeFromGroupMessages leaves the joined group's room and removes
// its listener.
func (vm *ViewModel) UnsubscribeFromGroupMessages() {
	vm.mu.Lock()
	remove, id := vm.groupSub, vm.groupSubID
	vm.groupSub, vm.groupSubID = nil, ""
	vm.mu.Unlock()
	if remove == nil {
		return
	}
	vm.emit(socket.EventLeaveGroup, id)
	remove()
}

type typingPayload struct {
	UserID     string `json:"userId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
}

// SendTypingIndicator tells receiverID we started typing.
func (vm *ViewModel) SendTypingIndicator(receiverID string) {
	if vm.socket == nil || receiverID == "" {
		return
	}
	vm.emit(socket.EventTypingStart, typingPayload{ReceiverID: receiverID})
}

// StopTypingIndicator tells receiverID we stopped typing.
func (vm *ViewModel) StopTypingIndicator(receiverID string) {
	if vm.socket == nil || receiverID == "" {
		return
	}
	vm.emit(socket.EventTypingStop, typingPayload{ReceiverID: receiverID})
}

// SubscribeToTyping tracks who is typing to us one-to-one. The returned
// func removes both listeners.
func (vm *ViewModel) SubscribeToTyping() func() {
	if vm.socket == nil {
		return func() {}
	}
	offStart := vm.socket.On(socket.EventUserTyping, func(raw json.RawMessage) {
		if p, ok := vm.decodeTyping(raw); ok {
			vm.typingUsers.Add(p.UserID)
		}
	})
	offStop := vm.socket.On(socket.EventUserStopTyping, func(raw json.RawMessage) {
		if p, ok := vm.decodeTyping(raw); ok {
			vm.typingUsers.Remove(p.UserID)
		}
	})
	return func() {
		offStart()
		offStop()
	}
}

// SendGroupTypingIndicator tells groupID's members we started typing.
func (vm *ViewModel) SendGroupTypingIndicator(groupID string) {
	if vm.socket == nil || groupID == "" {
		return
	}
	vm.emit(socket.EventGroupTypingStart, typingPayload{GroupID: groupID})
}

// StopGroupTypingIndicator tells groupID's members we stopped typing.
func (vm *ViewModel) StopGroupTypingIndicator(groupID string) {
	if vm.socket == nil || groupID == "" {
		return
	}
	vm.emit(socket.EventGroupTypingStop, typingPayload{GroupID: groupID})
}

// SubscribeToGroupTyping tracks who is typing in the selected group. Events
// for other groups are ignored. The returned func removes both listeners.
func (vm *ViewModel) SubscribeToGroupTyping() func() {
	vm.mu.RLock()
	sel, gen := vm.selectedGroup, vm.selGen
	vm.mu.RUnlock()
	if sel == nil || vm.socket == nil {
		return func() {}
	}
	groupID := sel.ID
	// mu is held while touching the set so a selection change cannot slip
	// between the check and the update.
	offStart := vm.socket.On(socket.EventGroupUserTyping, func(raw json.RawMessage) {
		if p, ok := vm.decodeTyping(raw); ok && p.GroupID == groupID {
			vm.mu.RLock()
			if vm.selGen == gen {
				vm.groupTypingUsers.Add(p.UserID)
			}
			vm.mu.RUnlock()
		}
	})
	offStop := vm.socket.On(socket.EventGroupUserStopTyping, func(raw json.RawMessage) {
		if p, ok := vm.decodeTyping(raw); ok && p.GroupID == groupID {
			vm.groupTypingUsers.Remove(p.UserID)
		}
	})
	return func() {
		offStart()
		offStop()
	}
}

func (vm *ViewModel) decodeTyping(raw json.RawMessage) (typingPayload, bool) {
	var p typingPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.UserID == "" {
		vm.logger.Debug("bad typing payload", zap.ByteString("raw", raw))
		return p, false
	}
	return p, true
}

func (vm *ViewModel) emit(event string, data any) {
	if err := vm.socket.Emit(event, data); err != nil {
		vm.logger.Debug("emit failed", zap.String("event", event), zap.Error(err))
	}
}

// Keystroke feeds the typing debouncer for the selected conversation.
func (vm *ViewModel) Keystroke() {
	vm.mu.RLock()
	var target string
	switch {
	case vm.selectedUser != nil:
		target = userTarget + vm.selectedUser.ID
	case vm.selectedGroup != nil:
		target = groupTarget + vm.selectedGroup.ID
	}
	vm.mu.RUnlock()
	vm.debouncer.Keystroke(target)
}

// StopTyping closes any open typing window now.
func (vm *ViewModel) StopTyping() {
	vm.debouncer.Flush()
}

const (
	userTarget  = "u:"
	groupTarget = "g:"
)

func (vm *ViewModel) typingStarted(target string) {
	if id, ok := strings.CutPrefix(target, userTarget); ok {
		vm.SendTypingIndicator(id)
	} else if id, ok := strings.CutPrefix(target, groupTarget); ok {
		vm.SendGroupTypingIndicator(id)
	}
}

func (vm *ViewModel) typingStopped(target string) {
	if id, ok := strings.CutPrefix(target, userTarget); ok {
		vm.StopTypingIndicator(id)
	} else if id, ok := strings.CutPrefix(target, groupTarget); ok {
		vm.StopGroupTypingIndicator(id)
	}
}

// SetSelectedUser selects u and clears any selected group.
func (vm *ViewModel) SetSelectedUser(u *api.User) {
	vm.setSelection(u, nil)
}

// SetSelectedGroup selects g and clears any selected user.
func (vm *ViewModel) SetSelectedGroup(g *api.Group) {
	vm.setSelection(nil, g)
}

func (vm *ViewModel) generation() uint64 {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selGen
}

// setSelection replaces the selection and starts a new generation. Loads
// still in flight for the old one will drop their results.
func (vm *ViewModel) setSelection(u *api.User, g *api.Group) uint64 {
	vm.mu.Lock()
	vm.selGen++
	gen := vm.selGen
	vm.selectedUser = clonePtr(u)
	vm.selectedGroup = clonePtr(g)
	vm.messagesLoading = false
	vm.groupMessagesLoading = false
	vm.mu.Unlock()
	vm.signalRefresh()
	return gen
}

// SelectUser opens the one-to-one conversation with u: it tears down the
// previous conversation, loads history and subscribes to new messages.
// It returns ErrSuperseded if another selection happened meanwhile.
func (vm *ViewModel) SelectUser(ctx context.Context, u api.User) error {
	vm.selMu.Lock()
	gen := vm.setSelection(&u, nil)
	vm.leaveConversation()
	vm.mu.Lock()
	vm.messages = nil
	vm.mu.Unlock()
	vm.selMu.Unlock()

	err := vm.loadMessages(ctx, u.ID, gen)

	vm.selMu.Lock()
	defer vm.selMu.Unlock()
	if vm.generation() != gen {
		return ErrSuperseded
	}
	vm.SubscribeToMessages()
	return err
}

// SelectGroup opens the conversation for g: it tears down the previous
// conversation, loads history, joins the group's room and tracks typing.
// It returns ErrSuperseded if another selection happened meanwhile.
func (vm *ViewModel) SelectGroup(ctx context.Context, g api.Group) error {
	vm.selMu.Lock()
	gen := vm.setSelection(nil, &g)
	vm.leaveConversation()
	vm.mu.Lock()
	vm.groupMessages = nil
	vm.mu.Unlock()
	vm.selMu.Unlock()

	err := vm.loadGroupMessages(ctx, g.ID, gen)

	vm.selMu.Lock()
	defer vm.selMu.Unlock()
	if vm.generation() != gen {
		return ErrSuperseded
	}
	vm.SubscribeToGroupMessages()
	off := vm.SubscribeToGroupTyping()
	vm.mu.Lock()
	prev := vm.groupTypingSub
	vm.groupTypingSub = off
	vm.mu.Unlock()
	if prev != nil {
		prev()
	}
	return err
}

// CloseConversation tears down the selected conversation and deselects it.
func (vm *ViewModel) CloseConversation() {
	vm.selMu.Lock()
	defer vm.selMu.Unlock()
	vm.setSelection(nil, nil)
	vm.leaveConversation()
}

func (vm *ViewModel) leaveConversation() {
	vm.debouncer.Flush()
	vm.UnsubscribeFromMessages()
	vm.UnsubscribeFromGroupMessages()

	vm.mu.Lock()
	off := vm.groupTypingSub
	vm.groupTypingSub = nil
	vm.mu.Unlock()
	if off != nil {
		off()
	}
	vm.typingUsers.Clear()
	vm.groupTypingUsers.Clear()
}

// CreateGroup creates a group with the auth user as admin and reloads the
// group list. Name is trimmed; an empty name or member list is rejected
// without calling the backend.
func (vm *ViewModel) CreateGroup(ctx context.Context, name string, members []string) (*api.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(members) == 0 {
		vm.Flash.Error("Please provide a group name and select at least one member")
		return nil, ErrInvalidGroup
	}

	g, err := vm.backend.CreateGroup(ctx, api.CreateGroupRequest{
		Name:        name,
		Description: "",
		Members:     members,
	})
	if err != nil {
		vm.logger.Warn("create group failed", zap.String("name", name), zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Failed to create group"))
		return nil, err
	}
	vm.Flash.Info("Group created successfully!")
	_ = vm.GetGroups(ctx)
	return g, nil
}

// CheckAuth asks the backend who the stored cookie belongs to.
func (vm *ViewModel) CheckAuth(ctx context.Context) (*api.User, error) {
	u, err := vm.backend.CheckAuth(ctx)
	vm.mu.Lock()
	if err != nil {
		vm.authUser = nil
	} else {
		vm.authUser = clonePtr(u)
	}
	vm.mu.Unlock()
	vm.signalRefresh()
	return u, err
}

// Login signs in and records the auth user.
func (vm *ViewModel) Login(ctx context.Context, email, password string) (*api.User, error) {
	u, err := vm.backend.Login(ctx, email, password)
	if err != nil {
		vm.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Login failed"))
		return nil, err
	}
	vm.mu.Lock()
	vm.authUser = clonePtr(u)
	vm.mu.Unlock()
	vm.Flash.Info("Logged in successfully")
	vm.signalRefresh()
	return u, nil
}

// Logout signs out and drops every cached entity.
func (vm *ViewModel) Logout(ctx context.Context) error {
	vm.CloseConversation()
	if err := vm.backend.Logout(ctx); err != nil {
		vm.logger.Warn("logout failed", zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Failed to log out"))
		return err
	}
	vm.mu.Lock()
	vm.authUser = nil
	vm.users = nil
	vm.groups = nil
	vm.messages = nil
	vm.groupMessages = nil
	vm.mu.Unlock()
	vm.Flash.Info("Logged out successfully")
	vm.signalRefresh()
	return nil
}

// Close tears down the open conversation. Call on application stop.
func (vm *ViewModel) Close() {
	vm.leaveConversation()
}
