package model

import (
	"sync"
	"time"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

const (
	infoTTL = 5 * time.Second
	warnTTL = 8 * time.Second
	errTTL  = 10 * time.Second
)

// FlashMessage is a flash notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// Flash holds transient notification messages with levels.
type Flash struct {
	mu      sync.RWMutex
	current FlashMessage
	watchCh chan FlashMessage
}

// NewFlash creates a new flash holder.
func NewFlash() *Flash {
	return &Flash{
		watchCh: make(chan FlashMessage, 8),
	}
}

// Info sets an info-level flash message.
func (f *Flash) Info(msg string) {
	f.set(msg, FlashInfo, infoTTL)
}

// Warn sets a warn-level flash message.
func (f *Flash) Warn(msg string) {
	f.set(msg, FlashWarn, warnTTL)
}

// Error sets an error-level flash message.
func (f *Flash) Error(msg string) {
	f.set(msg, FlashErr, errTTL)
}

// Err sets an error-level flash message from err.
func (f *Flash) Err(err error) {
	f.set(err.Error(), FlashErr, errTTL)
}

func (f *Flash) set(msg string, level FlashLevel, d time.Duration) {
	fm := FlashMessage{
		Text:    msg,
		Level:   level,
		Expires: time.Now().Add(d),
	}
	f.mu.Lock()
	f.current = fm
	f.mu.Unlock()
	select {
	case f.watchCh <- fm:
	default:
	}
}

// Get returns the current flash message text, or empty if expired.
func (f *Flash) Get() string {
	if m := f.Message(); m != nil {
		return m.Text
	}
	return ""
}

// Message returns the current flash message, or nil if expired.
func (f *Flash) Message() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel that receives flash messages as they are set.
func (f *Flash) Watch() <-chan FlashMessage {
	return f.watchCh
}
