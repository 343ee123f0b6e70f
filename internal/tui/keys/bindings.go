package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

type binding struct {
	name   string
	action *Action
}

// scope keeps bindings in registration order; re-adding a name replaces it
// in place.
type scope []binding

func (s scope) set(name string, action *Action) scope {
	for i := range s {
		if s[i].name == name {
			s[i].action = action
			return s
		}
	}
	return append(s, binding{name: name, action: action})
}

// Registry holds keybindings organized by scope. View bindings win over
// global ones.
type Registry struct {
	global scope
	views  map[string]scope
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]scope)}
}

// AddGlobal registers a global keybinding.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = r.global.set(name, action)
}

// AddView registers a view-specific keybinding.
func (r *Registry) AddView(view, name string, action *Action) {
	r.views[view] = r.views[view].set(name, action)
}

// Hints returns visible keybinding descriptions for a view, view bindings
// first.
func (r *Registry) Hints(view string) []string {
	var hints []string
	for _, s := range []scope{r.views[view], r.global} {
		for _, b := range s {
			if b.action.Visible {
				hints = append(hints, b.action.Description)
			}
		}
	}
	return hints
}

// HandleEvent dispatches a key event to the first matching action in the
// given view, then the global scope. Returns true if a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, s := range []scope{r.views[view], r.global} {
		for _, b := range s {
			if b.action.Matches(ev) {
				if b.action.Handler != nil {
					b.action.Handler()
				}
				return true
			}
		}
	}
	return false
}
