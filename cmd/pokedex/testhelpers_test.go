package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/smileynet/pokedex/internal/api"
	"github.com/smileynet/pokedex/internal/config"
	"github.com/smileynet/pokedex/internal/roster"
)

const testToken = "test-token"

// fakeBackend serves the backend routes the CLI uses from memory.
type fakeBackend struct {
	mu        sync.Mutex
	names     []string
	types     map[string][]string
	favorites []api.Member
	team      []api.Member
	nextID    int
	healthy   bool
}

func newFakeBackend(names ...string) *fakeBackend {
	return &fakeBackend{names: names, types: map[string][]string{}, healthy: true}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) resource(i int) api.NamedResource {
	return api.NamedResource{Name: b.names[i], URL: fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1)}
}

func (b *fakeBackend) index(nameOrID string) int {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		if id >= 1 && id <= len(b.names) {
			return id - 1
		}
		return -1
	}
	for i, n := range b.names {
		if n == nameOrID {
			return i
		}
	}
	return -1
}

// authorized rejects requests without the test token.
func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token inválido"})
		return false
	}
	return true
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if !b.healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/pokemon", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		page := api.Page{Count: len(b.names), Results: []api.NamedResource{}}
		for i := offset; i < offset+limit && i < len(b.names); i++ {
			page.Results = append(page.Results, b.resource(i))
		}
		writeJSON(w, http.StatusOK, page)
	})

	mux.HandleFunc("GET /api/pokemon/{name}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.index(r.PathValue("name"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Pokémon não encontrado"})
			return
		}
		writeJSON(w, http.StatusOK, api.Pokemon{
			ID:     i + 1,
			Name:   b.names[i],
			Height: 7,
			Weight: 69,
			Types:  []api.PokemonType{{Slot: 1, Type: api.NamedResource{Name: "grass"}}},
			Stats: []api.PokemonStat{
				{BaseStat: 45, Stat: api.NamedResource{Name: "hp"}},
				{BaseStat: 49, Stat: api.NamedResource{Name: "attack"}},
			},
		})
	})

	mux.HandleFunc("GET /api/type", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.TypeList{Results: []api.NamedResource{
			{Name: "grass"}, {Name: "fire"}, {Name: "unknown"}, {Name: "shadow"},
		}})
	})

	mux.HandleFunc("GET /api/type/{name}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var page api.Page
		for _, n := range b.types[r.PathValue("name")] {
			page.Results = append(page.Results, b.resource(b.index(n)))
		}
		writeJSON(w, http.StatusOK, page)
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Login    string `json:"login"`
			Password string `json:"senha"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pikachu" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Login ou senha inválidos"})
			return
		}
		writeJSON(w, http.StatusOK, api.AuthResponse{
			AccessToken: testToken,
			User:        api.User{ID: 1, Name: "Ash", Login: creds.Login, Email: "ash@example.com", IsAdmin: true},
		})
	})

	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, api.User{ID: 1, Name: "Ash", Login: "ash", Email: "ash@example.com", IsAdmin: true})
	})

	mux.HandleFunc("GET /api/auth/users", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		created := "2024-05-01"
		writeJSON(w, http.StatusOK, []api.UserSummary{{ID: 1, Name: "Ash", CreatedAt: &created}, {ID: 2, Name: "Misty"}})
	})

	b.memberRoutes(mux, "/api/me/favorites", &b.favorites, -1)
	b.memberRoutes(mux, "/api/me/team", &b.team, roster.TeamLimit)
	return mux
}

// memberRoutes serves GET, POST and DELETE for one member list. limit < 0
// means unbounded.
func (b *fakeBackend) memberRoutes(mux *http.ServeMux, path string, list *[]api.Member, limit int) {
	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]api.Member{}, *list...))
	})
	mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if limit >= 0 && len(*list) >= limit {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Equipe de Batalha já tem 6 integrantes"})
			return
		}
		var in api.MemberInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.nextID++
		m := api.Member{ID: b.nextID, UserID: 1, Code: in.Code, Name: in.Name, ImageURL: in.ImageURL, Favorite: in.Favorite, Team: in.Team}
		*list = append(*list, m)
		writeJSON(w, http.StatusCreated, m)
	})
	mux.HandleFunc("DELETE "+path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		kept := (*list)[:0]
		for _, m := range *list {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		*list = kept
		w.WriteHeader(http.StatusNoContent)
	})
}

// testEnv is an app wired to a fake backend with its output captured.
type testEnv struct {
	backend *fakeBackend
	app     *app
	out     *bytes.Buffer
	cfg     *config.Config
}

// newTestEnv starts a fake backend and builds an app against it. The
// session file lives in a temp dir; token logs the app in.
func newTestEnv(t *testing.T, backend *fakeBackend, token string) *testEnv {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Session.Path = filepath.Join(t.TempDir(), "session.json")
	cfg.Session.Token = token
	cfg.Catalog.FullSize = len(backend.names)
	cfg.Catalog.BatchDelay = 0

	env := &testEnv{backend: backend, out: &bytes.Buffer{}, cfg: &cfg}
	env.app = env.rebuild(t)
	return env
}

// rebuild builds a fresh app from the env's config, as a new process would.
func (e *testEnv) rebuild(t *testing.T) *app {
	t.Helper()
	a, err := buildApp(e.cfg, e.out, io.Discard)
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	e.app = a
	return a
}

// output returns and resets the captured output.
func (e *testEnv) output() string {
	s := e.out.String()
	e.out.Reset()
	return s
}

func containsAll(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
