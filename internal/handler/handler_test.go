package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choretracker/internal/auth"
	"github.com/dukerupert/choretracker/internal/config"
	"github.com/dukerupert/choretracker/internal/database"
	"github.com/dukerupert/choretracker/internal/store"
)

// fixedNow is "today" for every chore handler under test: 2026-02-05.
var fixedNow = time.Date(2026, 2, 5, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *sql.DB
	users    *store.UserStore
	children *store.ChildStore
	tasks    *store.TaskStore
	chores   *store.ChoreStore
	router   http.Handler
}

func newTestEnv(t *testing.T, policy config.DeletePolicy) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		db:       db,
		users:    store.NewUserStore(db),
		children: store.NewChildStore(db),
		tasks:    store.NewTaskStore(db),
		chores:   store.NewChoreStore(db),
	}
	clock := func() time.Time { return fixedNow }

	taskH := NewTaskHandler(env.tasks, policy, logger)
	childH := NewChildHandler(env.children, env.chores, policy, logger)
	choreV1 := NewChoreHandler(env.chores, env.children, env.tasks, ChoreViewV1, time.UTC, logger).WithClock(clock)
	choreV2 := NewChoreHandler(env.chores, env.children, env.tasks, ChoreViewV2, time.UTC, logger).WithClock(clock)
	userH := NewUserHandler(env.users, logger)
	tokenH := NewTokenHandler(env.users, logger)

	r := chi.NewRouter()
	r.Route("/api/v1/tasks", taskH.Routes)
	r.Route("/api/v2/children", childH.Routes)
	r.Route("/api/v2/chores", choreV2.Routes)
	r.Route("/tasks", taskH.Routes)
	r.Route("/children", childH.Routes)
	r.Route("/chores", choreV1.Routes)
	r.Route("/users", userH.Routes)
	r.Get("/token", tokenH.Issue)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// doAs sends the request as if the token middleware had authenticated userID.
func (e *testEnv) doAs(t *testing.T, userID int64, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: userID}))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doForm(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorsBody struct {
	Errors map[string][]string `json:"errors"`
}
