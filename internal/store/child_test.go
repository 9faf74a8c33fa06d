package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
)

func childNames(children []model.Child) []string {
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name()
	}
	return names
}

func TestChildCRUD(t *testing.T) {
	s := setupTestDB(t)

	child, err := s.children.Create(ctx, "Ada", "Lovelace", true)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", child.Name())
	assert.True(t, child.Active)
	assert.Equal(t, 0, child.PointsEarned)

	updated, err := s.children.Update(ctx, child.ID, "Ada", "Byron", false)
	require.NoError(t, err)
	assert.Equal(t, "Ada Byron", updated.Name())
	assert.False(t, updated.Active)

	require.NoError(t, s.children.Delete(ctx, child.ID, false))
	got, err := s.children.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChildPointsEarned(t *testing.T) {
	s := setupTestDB(t)
	child, _ := s.children.Create(ctx, "Ada", "Lovelace", true)
	other, _ := s.children.Create(ctx, "Alan", "Turing", true)
	dishes, _ := s.tasks.Create(ctx, "Dishes", 5, true)
	bins, _ := s.tasks.Create(ctx, "Bins", 3, true)

	_, err := s.chores.Create(ctx, child.ID, dishes.ID, date("2026-02-01"), true)
	require.NoError(t, err)
	_, err = s.chores.Create(ctx, child.ID, bins.ID, date("2026-02-02"), true)
	require.NoError(t, err)
	_, err = s.chores.Create(ctx, child.ID, dishes.ID, date("2026-02-03"), false)
	require.NoError(t, err)
	_, err = s.chores.Create(ctx, other.ID, dishes.ID, date("2026-02-03"), true)
	require.NoError(t, err)

	got, err := s.children.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.PointsEarned)

	list, err := s.children.List(ctx, query.ChildParams{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 8, list[0].PointsEarned)
	assert.Equal(t, 5, list[1].PointsEarned)
}

func TestChildListFilters(t *testing.T) {
	s := setupTestDB(t)
	for _, c := range []struct {
		first, last string
		active      bool
	}{
		{"Zoe", "Adams", true},
		{"Ada", "Zimmer", false},
		{"Ada", "Byron", true},
	} {
		_, err := s.children.Create(ctx, c.first, c.last, c.active)
		require.NoError(t, err)
	}

	all, err := s.children.List(ctx, query.ChildParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zoe Adams", "Ada Zimmer", "Ada Byron"}, childNames(all))

	active, err := s.children.List(ctx, query.ChildParams{Active: query.True})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zoe Adams", "Ada Byron"}, childNames(active))

	inactive, err := s.children.List(ctx, query.ChildParams{Active: query.False})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Zimmer"}, childNames(inactive))

	alpha, err := s.children.List(ctx, query.ChildParams{Alphabetical: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Byron", "Ada Zimmer", "Zoe Adams"}, childNames(alpha))
}

func TestChildDeletePolicy(t *testing.T) {
	s := setupTestDB(t)
	child, _ := s.children.Create(ctx, "Ada", "Lovelace", true)
	task, _ := s.tasks.Create(ctx, "Dishes", 5, true)
	_, err := s.chores.Create(ctx, child.ID, task.ID, date("2026-02-05"), false)
	require.NoError(t, err)

	assert.True(t, errors.Is(s.children.Delete(ctx, child.ID, false), ErrHasChores))

	require.NoError(t, s.children.Delete(ctx, child.ID, true))
	assert.Zero(t, s.choreCount(t))

	// The task is untouched by a child cascade.
	got, err := s.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
