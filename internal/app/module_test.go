package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/lock"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/store"
)

func testParams(t *testing.T, backend string) Params {
	t.Helper()
	t.Setenv(profile.HomeEnv, t.TempDir())
	cfg := config.Default()
	cfg.BackendURL = backend + "/api"
	return Params{Profile: "test", Config: cfg, LogLevel: "debug"}
}

func TestModuleGraphIsComplete(t *testing.T) {
	p := testParams(t, "http://127.0.0.1:1")
	if err := fx.ValidateApp(Module(p)); err != nil {
		t.Fatalf("Module graph: %v", err)
	}
	if err := fx.ValidateApp(ClientModule(p)); err != nil {
		t.Fatalf("ClientModule graph: %v", err)
	}
}

func authBackend(t *testing.T) *httptest.Server {
	t.Helper()
	user := api.User{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-1", Path: "/", MaxAge: 3600})
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("GET /api/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("jwt"); err != nil || c.Value != "token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized - No Token Provided"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientModuleKeepsLoginAcrossRuns(t *testing.T) {
	srv := authBackend(t)
	p := testParams(t, srv.URL)
	ctx := context.Background()

	var c *api.Client
	first := fxtest.New(t, ClientModule(p), fx.Populate(&c))
	first.RequireStart()
	if _, err := c.CheckAuth(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("CheckAuth before login = %v, want unauthorized", err)
	}
	if _, err := c.Login(ctx, "ada@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	first.RequireStop()

	var (
		c2 *api.Client
		db *store.DB
	)
	second := fxtest.New(t, ClientModule(p), fx.Populate(&c2, &db))
	second.RequireStart()
	defer second.RequireStop()

	u, err := c2.CheckAuth(ctx)
	if err != nil {
		t.Fatalf("CheckAuth after restart: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("user = %+v", u)
	}
	cookies, err := db.ListCookies(p.Config.BackendURL)
	if err != nil || len(cookies) != 1 {
		t.Errorf("stored cookies = %v, %v", cookies, err)
	}
}

func TestProvideLockIsExclusive(t *testing.T) {
	p := testParams(t, "http://127.0.0.1:1")
	logger := zap.NewNop()

	l, err := provideLock(p, logger)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer func() { _ = l.Release() }()

	_, err = provideLock(p, logger)
	var held *lock.HeldError
	if !errors.As(err, &held) {
		t.Fatalf("second lock err = %v, want HeldError", err)
	}
}

func TestProvideStoreMigrates(t *testing.T) {
	p := testParams(t, "http://127.0.0.1:1")
	if err := profile.EnsureDir(p.Profile); err != nil {
		t.Fatal(err)
	}
	db, err := provideStore(p, zap.NewNop())
	if err != nil {
		t.Fatalf("provideStore: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.SetPref(store.PrefLastEmail, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetPref(store.PrefLastEmail); got != "ada@example.com" {
		t.Errorf("pref = %q", got)
	}
}
