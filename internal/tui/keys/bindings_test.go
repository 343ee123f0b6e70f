package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewBindingShadowsGlobal(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = append(got, "global") }})
	r.AddView("chats", "query", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = append(got, "view") }})

	if !r.HandleEvent("chats", runeKey('q')) {
		t.Fatal("q not handled in chats")
	}
	if !r.HandleEvent("help", runeKey('q')) {
		t.Fatal("q not handled in help")
	}
	if r.HandleEvent("chats", runeKey('x')) {
		t.Error("x should not match")
	}
	if diff := cmp.Diff([]string{"view", "global"}, got); diff != "" {
		t.Errorf("dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestSpecialKeys(t *testing.T) {
	r := NewRegistry()
	hit := false
	r.AddGlobal("refresh", &Action{Key: tcell.KeyCtrlR, Handler: func() { hit = true }})
	if r.HandleEvent("chats", runeKey('r')) {
		t.Error("plain r matched Ctrl-R")
	}
	r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl))
	if !hit {
		t.Error("Ctrl-R not dispatched")
	}
}

func TestHintsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Description: "q:quit", Visible: true})
	r.AddGlobal("help", &Action{Description: "?:help", Visible: true})
	r.AddView("chats", "filter", &Action{Description: "/:filter", Visible: true})
	r.AddView("chats", "jump", &Action{Description: "1:jump"})
	r.AddView("chats", "reload", &Action{Description: "r:reload", Visible: true})
	r.AddGlobal("quit", &Action{Description: "q:exit", Visible: true})

	want := []string{"/:filter", "r:reload", "q:exit", "?:help"}
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(want, r.Hints("chats")); diff != "" {
			t.Fatalf("hints mismatch (-want +got):\n%s", diff)
		}
	}
	if diff := cmp.Diff([]string{"q:exit", "?:help"}, r.Hints("login")); diff != "" {
		t.Errorf("login hints mismatch (-want +got):\n%s", diff)
	}
}
