package tui

import (
	"strings"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/views"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	if canonical, ok := aliases[cmd.Name]; ok {
		cmd.Name = canonical
	}
	return cmd
}

var aliases = map[string]string{
	"q":    "quit",
	"exit": "quit",
	"h":    "help",
	"u":    "users",
	"g":    "groups",
	"o":    "open",
	"a":    "attach",
}

func (a *App) execute(cmd Command) {
	switch cmd.Name {
	case "quit":
		a.Stop()
	case "help":
		a.push(pageHelp)
	case "users", "groups", "chats":
		a.showChats(cmd.Name)
	case "group":
		if a.vm.Snapshot().AuthUser == nil {
			a.vm.Flash.Warn("Not signed in")
			return
		}
		a.openGroupCreate(cmd.Args)
	case "open":
		a.openByName(cmd.Args)
	case "attach":
		if cmd.Args == "" {
			a.vm.Flash.Warn("Usage: :attach <path>")
			return
		}
		a.attach(cmd.Args)
	case "detach":
		a.clearAttachment()
	case "reconnect":
		a.reconnect()
	case "logout":
		a.logout()
	case "":
	default:
		a.vm.Flash.Warn("Unknown command: " + cmd.Name)
	}
	a.renderFlash()
}

// showChats returns to the chats page and jumps the cursor to a section.
func (a *App) showChats(section string) {
	if a.vm.Snapshot().AuthUser == nil {
		return
	}
	a.pages.PopToRoot()
	a.focusPage(pageChats)
	a.sidebar.ClearFilter()
	if section == "groups" {
		a.sidebar.JumpToGroups()
	}
}

// openByName opens the first user or group whose name contains query.
func (a *App) openByName(query string) {
	if query == "" {
		a.vm.Flash.Warn("Usage: :open <name>")
		return
	}
	s := a.vm.Snapshot()
	e, ok := findEntry(s.Users, s.Groups, query)
	if !ok {
		a.vm.Flash.Warn("No user or group matches " + query)
		return
	}
	a.pages.PopToRoot()
	a.open(e)
}

// findEntry prefers an exact case-insensitive name match, users before
// groups, then falls back to the first substring match.
func findEntry(users []api.User, groups []api.Group, query string) (views.Entry, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return views.Entry{}, false
	}
	for i := range users {
		if strings.ToLower(users[i].FullName) == q || strings.ToLower(users[i].Email) == q {
			return views.Entry{User: &users[i]}, true
		}
	}
	for i := range groups {
		if strings.ToLower(groups[i].Name) == q {
			return views.Entry{Group: &groups[i]}, true
		}
	}
	for i := range users {
		if strings.Contains(strings.ToLower(users[i].FullName), q) {
			return views.Entry{User: &users[i]}, true
		}
	}
	for i := range groups {
		if strings.Contains(strings.ToLower(groups[i].Name), q) {
			return views.Entry{Group: &groups[i]}, true
		}
	}
	return views.Entry{}, false
}
