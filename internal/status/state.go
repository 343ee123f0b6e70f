package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/chatterm/internal/bus"
)

// KindChanged is the bus event kind published on every transition.
const KindChanged = "status.changed"

// State is the client's connection state.
type State string

const (
	Booting      State = "BOOTING"
	AuthRequired State = "AUTH_REQUIRED"
	Connecting   State = "CONNECTING"
	Online       State = "ONLINE"
	Offline      State = "OFFLINE"
	Error        State = "ERROR"
)

var validTransitions = map[State][]State{
	Booting:      {AuthRequired, Connecting, Error},
	AuthRequired: {Connecting, Error},
	Connecting:   {Online, Offline, AuthRequired, Error},
	Online:       {Offline, AuthRequired, Error},
	Offline:      {Connecting, AuthRequired, Error},
	Error:        {Booting, Connecting, AuthRequired},
}

// Machine tracks and enforces connection state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state. Returns an error if the transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      KindChanged,
			Timestamp: time.Now(),
			Payload:   Change{From: from, To: to},
		})
	}
	return nil
}

// Change is the payload for status change events.
type Change struct {
	From State
	To   State
}

// Label is a short human-readable form for the status bar.
func (s State) Label() string {
	switch s {
	case Booting:
		return "starting"
	case AuthRequired:
		return "signed out"
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "error"
	}
}
