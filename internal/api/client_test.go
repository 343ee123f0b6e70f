package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/chatterm/internal/store"
)

func testStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/messages/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("request id header missing")
		}
		writeJSON(w, http.StatusOK, []map[string]string{
			{"_id": "u1", "fullName": "Ada Lovelace", "email": "ada@example.com"},
			{"_id": "u2", "fullName": "Alan Turing", "email": "alan@example.com", "profilePic": "http://pic"},
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/api"})
	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []User{
		{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com"},
		{ID: "u2", FullName: "Alan Turing", Email: "alan@example.com", ProfilePic: "http://pic"},
	}
	if diff := cmp.Diff(want, users); diff != "" {
		t.Errorf("ListUsers() mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessagePostsDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/messages/send/u2" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var d Draft
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			t.Fatal(err)
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"_id": "m1", "senderId": "u1", "receiverId": "u2", "text": d.Text,
			"createdAt": "2026-10-16T10:00:00.000Z",
		})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/api"})
	m, err := c.SendMessage(context.Background(), "u2", Draft{Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "m1" || m.Text != "hi" || m.SenderID != "u1" {
		t.Errorf("message = %+v", m)
	}
	if want := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC); !m.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
	}
}

func TestGroupPayloadShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/groups":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"_id": "g1", "name": "Team", "members": []any{"u1", map[string]string{"_id": "u2", "fullName": "Alan"}}},
			})
		case "/api/groups/g1/messages":
			writeJSON(w, http.StatusOK, []map[string]any{
				{"_id": "gm1", "groupId": "g1", "text": "hello", "senderId": map[string]string{"_id": "u2", "fullName": "Alan"}},
				{"_id": "gm2", "groupId": "g1", "text": "raw", "senderId": "u1"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/api"})
	groups, err := c.ListGroups(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if diff := cmp.Diff(Members{"u1", "u2"}, groups[0].Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	msgs, err := c.ListGroupMessages(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender.FullName != "Alan" || msgs[0].Sender.ID != "u2" {
		t.Errorf("populated sender = %+v", msgs[0].Sender)
	}
	if msgs[1].Sender.ID != "u1" {
		t.Errorf("bare sender = %+v", msgs[1].Sender)
	}
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/groups":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Group name already taken"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized - No Token Provided"})
		}
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/api"})

	_, err := c.ListUsers(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("ListUsers() error = %v, want 401", err)
	}
	if got := UserMessage(err, "Failed to load users"); got != "Unauthorized - No Token Provided" {
		t.Errorf("UserMessage() = %q", got)
	}

	_, err = c.CreateGroup(context.Background(), CreateGroupRequest{Name: "x", Members: []string{"u1"}})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("CreateGroup() error = %v, want 400 *Error", err)
	}
	if got := UserMessage(err, "Failed to create group"); got != "Group name already taken" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestUserMessageFallback(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: refused"), "Failed to load users"); got != "Failed to load users" {
		t.Errorf("UserMessage() = %q, want fallback", got)
	}
}

func TestLoginCookieSurvivesRestart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-1", Path: "/", MaxAge: 3600, HttpOnly: true})
			writeJSON(w, http.StatusOK, map[string]string{"_id": "u1", "fullName": "Ada"})
		case "/api/auth/check":
			c, err := r.Cookie("jwt")
			if err != nil || c.Value != "token-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"_id": "u1", "fullName": "Ada"})
		case "/api/auth/logout":
			http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "", Path: "/", MaxAge: -1})
			writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
		}
	}))
	defer srv.Close()

	db := testStore(t)
	base := srv.URL + "/api"

	jar, err := NewPersistentJar(db, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := New(Options{BaseURL: base, Jar: jar})
	if _, err := c.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	// A fresh jar over the same store is already authenticated.
	jar2, err := NewPersistentJar(db, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := jar2.OriginCookies(); len(got) != 1 || got[0].Value != "token-1" {
		t.Fatalf("restored cookies = %v", got)
	}
	c2 := New(Options{BaseURL: base, Jar: jar2})
	u, err := c2.CheckAuth(context.Background())
	if err != nil {
		t.Fatalf("CheckAuth() error = %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("CheckAuth() user = %+v", u)
	}

	if err := c2.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	stored, err := db.ListCookies(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("stored cookies after logout = %+v, want none", stored)
	}
}

func TestJarClear(t *testing.T) {
	db := testStore(t)
	const base = "http://localhost:5001/api"
	if err := db.UpsertCookie(&store.Cookie{URL: base, Name: "jwt", Value: "t", Path: "/"}); err != nil {
		t.Fatal(err)
	}

	jar, err := NewPersistentJar(db, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(jar.OriginCookies()) != 1 {
		t.Fatal("expected restored cookie")
	}
	if err := jar.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := jar.OriginCookies(); len(got) != 0 {
		t.Errorf("cookies after Clear = %v", got)
	}
}
