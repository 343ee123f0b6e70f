package views

import (
	"fmt"
	"time"
)

// FormatMessageTime renders t relative to now for message lines.
func FormatMessageTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return t.Format("15:04")
	case d < 48*time.Hour:
		return "Yesterday " + t.Format("15:04")
	default:
		return t.Format("Jan 2 15:04")
	}
}
