// Package typing holds the two halves of the typing indicator: the sender-side
// debouncer that turns keystrokes into start/stop events, and the receiver-side
// set of ids currently typing.
package typing

import (
	"sync"
	"time"
)

// DefaultWindow is the idle period after the last keystroke before stop fires.
const DefaultWindow = time.Second

// Debouncer emits one start per burst of keystrokes and one stop once the
// burst has been idle for the window. Targets are conversation ids.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	start  func(target string)
	stop   func(target string)
	target string
	active bool
	timer  *time.Timer
	gen    uint64
}

// NewDebouncer returns a debouncer calling start and stop with the target id.
// Callbacks run without the debouncer's lock held.
func NewDebouncer(window time.Duration, start, stop func(target string)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, start: start, stop: stop}
}

// Keystroke records input for target. A keystroke for a different target
// first stops the previous one.
func (d *Debouncer) Keystroke(target string) {
	if target == "" {
		return
	}
	d.mu.Lock()
	var prev string
	if d.active && d.target != target {
		prev = d.target
		d.disarm()
	}
	first := !d.active
	d.active = true
	d.target = target
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.expire(gen) })
	d.mu.Unlock()

	if prev != "" {
		d.stop(prev)
	}
	if first {
		d.start(target)
	}
}

// Flush cancels a pending timer and emits stop immediately. Used on send,
// conversation change and view close. No-op when idle.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	target := d.target
	d.disarm()
	d.mu.Unlock()
	d.stop(target)
}

func (d *Debouncer) pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target, d.active
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if !d.active || gen != d.gen {
		d.mu.Unlock()
		return
	}
	target := d.target
	d.active = false
	d.target = ""
	d.timer = nil
	d.mu.Unlock()
	d.stop(target)
}

// disarm must be called with mu held.
func (d *Debouncer) disarm() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.active = false
	d.target = ""
}
