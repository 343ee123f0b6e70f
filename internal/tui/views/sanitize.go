package views

import (
	"strings"
	"unicode/utf8"
)

// sanitizeForTerminal removes codepoints that tcell renders badly: emoji
// skin tone modifiers, zero width joiners, variation selectors, and C0
// control characters other than newline.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\t':
			b.WriteString("    ")
		case r == '\r':
		case !isProblematicRune(r):
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// singleLine collapses s onto one line for table cells and headers.
func singleLine(s string) string {
	return strings.Join(strings.Fields(sanitizeForTerminal(s)), " ")
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	case r < 0x20 && r != '\n':
		return true
	case r == 0x7F:
		return true
	default:
		return false
	}
}
