package ui

import "github.com/rivo/tview"

// Pages is a stack of named views over tview.Pages. Overlay views are drawn
// on top of the page below them instead of replacing it.
type Pages struct {
	*tview.Pages
	views    map[string]View
	overlay  map[string]bool
	stack    []string
	onChange func(stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{
		Pages:   tview.NewPages(),
		views:   make(map[string]View),
		overlay: make(map[string]bool),
	}
}

// Add registers a full-screen view under name.
func (p *Pages) Add(name string, v View) {
	p.views[name] = v
	p.AddPage(name, v, true, false)
}

// AddOverlay registers a view that keeps the page below it visible.
func (p *Pages) AddOverlay(name string, v View) {
	p.Add(name, v)
	p.overlay[name] = true
}

// View returns the view registered under name.
func (p *Pages) View(name string) (View, bool) {
	v, ok := p.views[name]
	return v, ok
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if top := p.Current(); top != "" && !p.overlay[name] {
		p.HidePage(top)
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop removes the top page and returns its name. The last page is never
// popped; Pop returns "" then.
func (p *Pages) Pop() string {
	if len(p.stack) <= 1 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.HidePage(top)
	current := p.stack[len(p.stack)-1]
	p.ShowPage(current)
	p.SendToFront(current)
	p.notify()
	return top
}

// PopToRoot pops every page above the bottom one.
func (p *Pages) PopToRoot() {
	for p.Pop() != "" {
	}
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// CurrentView returns the view on top of the stack.
func (p *Pages) CurrentView() (View, bool) {
	return p.View(p.Current())
}

// Stack returns a copy of the current page stack.
func (p *Pages) Stack() []string {
	return append([]string(nil), p.stack...)
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset clears the stack and shows only name.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
