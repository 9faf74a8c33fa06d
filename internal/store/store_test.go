package store

import (
	"context"
	"database/sql"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choretracker/internal/database"
)

type testStores struct {
	db       *sql.DB
	users    *UserStore
	children *ChildStore
	tasks    *TaskStore
	chores   *ChoreStore
}

func setupTestDB(t *testing.T) testStores {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { db.Close() })
	return testStores{
		db:       db,
		users:    NewUserStore(db),
		children: NewChildStore(db),
		tasks:    NewTaskStore(db),
		chores:   NewChoreStore(db),
	}
}

func (s testStores) choreCount(t *testing.T) int {
	t.Helper()
	all, err := s.chores.List(ctx, ChoreFilter{})
	require.NoError(t, err)
	return len(all)
}

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

var ctx = context.Background()
