package tui

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matheus3301/chatterm/internal/api"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"quit", Command{Name: "quit"}},
		{"q", Command{Name: "quit"}},
		{"  :H  ", Command{Name: "help"}},
		{"group  Weekend plans ", Command{Name: "group", Args: "Weekend plans"}},
		{"attach /tmp/cat photo.png", Command{Name: "attach", Args: "/tmp/cat photo.png"}},
		{"o ada", Command{Name: "open", Args: "ada"}},
		{"", Command{}},
		{"Frobnicate now", Command{Name: "frobnicate", Args: "now"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseCommand(tt.in)); diff != "" {
				t.Errorf("ParseCommand(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestFindEntry(t *testing.T) {
	users := []api.User{
		{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com"},
		{ID: "u2", FullName: "Adam"},
	}
	groups := []api.Group{
		{ID: "g1", Name: "Adam"},
		{ID: "g2", Name: "Book club"},
	}
	tests := []struct {
		query  string
		wantID string
		ok     bool
	}{
		{"adam", "u2", true},
		{"ADA@example.com", "u1", true},
		{"ada", "u1", true},
		{"book", "g2", true},
		{"Book Club", "g2", true},
		{"zed", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e, ok := findEntry(users, groups, tt.query)
			if ok != tt.ok || e.ID() != tt.wantID {
				t.Errorf("findEntry(%q) = %q, %v; want %q, %v", tt.query, e.ID(), ok, tt.wantID, tt.ok)
			}
		})
	}
}
