package typing

import (
	"slices"
	"sync"
	"time"
)

// DefaultTTL bounds how long a remote id stays in a Set without a refresh.
const DefaultTTL = 5 * time.Second

// Set is a set of ids that are typing. Each entry expires after the TTL
// unless it is added again or removed explicitly.
type Set struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]*entry
	onChange func()
}

type entry struct {
	timer *time.Timer
	gen   uint64
}

// NewSet creates a set. onChange, if non-nil, runs after every membership
// change, including expiry, without the set's lock held.
func NewSet(ttl time.Duration, onChange func()) *Set {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Set{
		ttl:      ttl,
		entries:  make(map[string]*entry),
		onChange: onChange,
	}
}

// Add inserts id and re-arms its expiry.
func (s *Set) Add(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	} else {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(s.ttl, func() { s.expire(id, gen) })
	s.mu.Unlock()

	if !ok {
		s.changed()
	}
}

// Remove deletes id. Reports whether it was present.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.timer.Stop()
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if ok {
		s.changed()
	}
	return ok
}

// Clear drops every entry.
func (s *Set) Clear() {
	s.mu.Lock()
	n := len(s.entries)
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if n > 0 {
		s.changed()
	}
}

func (s *Set) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

func (s *Set) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IDs returns a sorted snapshot.
func (s *Set) IDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	slices.Sort(ids)
	return ids
}

func (s *Set) expire(id string, gen uint64) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.mu.Unlock()
	s.changed()
}

func (s *Set) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
