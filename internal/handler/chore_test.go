package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choretracker/internal/config"
	"github.com/dukerupert/choretracker/internal/serializer"
	"github.com/dukerupert/choretracker/internal/store"
)

func seedChoreFixtures(t *testing.T, env *testEnv) {
	t.Helper()
	for _, req := range []struct{ path, body string }{
		{"/api/v2/children", `{"first_name":"Ada","last_name":"Lovelace"}`},
		{"/api/v2/children", `{"first_name":"Alan","last_name":"Turing"}`},
		{"/api/v1/tasks", `{"name":"Vacuum","points":2}`},
		{"/api/v1/tasks", `{"name":"Dishes","points":5}`},
	} {
		require.Equal(t, http.StatusCreated, env.do(t, "POST", req.path, req.body).Code)
	}
}

func TestChoreCreateV2Shape(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)

	rec := env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":2,"due_on":"2026-02-05"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/v2/chores/1", rec.Header().Get("Location"))
	assert.JSONEq(t, `{
		"id": 1,
		"child": {"id": 1, "name": "Ada Lovelace"},
		"task": {"id": 2, "name": "Dishes", "points": 5},
		"due_on": "2026-02-05",
		"completed": false
	}`, rec.Body.String())

	rec = env.do(t, "GET", "/api/v2/chores/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada Lovelace", decode[serializer.ChoreV2](t, rec).Child.Name)
}

func TestChoreV1Shape(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)

	rec := env.do(t, "POST", "/chores", `{"child_id":2,"task_id":1,"due_on":"2026-02-05","completed":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/chores/1", rec.Header().Get("Location"))
	assert.JSONEq(t, `{
		"id": 1,
		"child_id": 2,
		"task": {"id": 1, "name": "Vacuum", "points": 2},
		"due_on": "2026-02-05",
		"completed": true
	}`, rec.Body.String())
}

func TestChoreCreateUnknownAssociation(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)

	for i := 0; i < 2; i++ {
		rec := env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":999,"due_on":"2026-02-05"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, map[string][]string{"task": {"must exist"}}, decode[errorsBody](t, rec).Errors)
	}

	rec := env.do(t, "POST", "/api/v2/chores", `{"child_id":77,"task_id":1,"due_on":"2026-02-05"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string][]string{"child": {"must exist"}}, decode[errorsBody](t, rec).Errors)

	all, err := env.chores.List(context.Background(), store.ChoreFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestChoreCreateValidation(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)

	rec := env.do(t, "POST", "/api/v2/chores", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string][]string{
		"child_id": {"can't be blank"},
		"task_id":  {"can't be blank"},
		"due_on":   {"can't be blank"},
	}, decode[errorsBody](t, rec).Errors)

	rec = env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":1,"due_on":"next tuesday"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string][]string{"due_on": {"is not a date"}}, decode[errorsBody](t, rec).Errors)

	rec = env.do(t, "POST", "/api/v2/chores", `{"child_id":"one","task_id":1,"due_on":"2026-02-05"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string][]string{"child_id": {"is not a number"}}, decode[errorsBody](t, rec).Errors)
}

func TestChoreUpdate(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)
	env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":1,"due_on":"2026-02-05"}`)

	rec := env.do(t, "PATCH", "/api/v2/chores/1", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[serializer.ChoreV2](t, rec)
	assert.True(t, c.Completed)
	assert.Equal(t, "2026-02-05", c.DueOn.String())

	rec = env.do(t, "PATCH", "/api/v2/chores/1", `{"task_id":404}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, "PUT", "/api/v2/chores/1", `{"child_id":2,"due_on":"2026-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c = decode[serializer.ChoreV2](t, rec)
	assert.Equal(t, "Alan Turing", c.Child.Name)
	assert.Equal(t, "2026-03-01", c.DueOn.String())

	rec = env.do(t, "GET", "/api/v2/children/1", "")
	assert.Zero(t, decode[serializer.Child](t, rec).PointsEarned)
	rec = env.do(t, "GET", "/api/v2/children/2", "")
	assert.Equal(t, 2, decode[serializer.Child](t, rec).PointsEarned)

	assert.Equal(t, http.StatusNoContent, env.do(t, "DELETE", "/api/v2/chores/1", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, "DELETE", "/api/v2/chores/1", "").Code)
}

func TestChoreListFilters(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	seedChoreFixtures(t, env)
	for _, body := range []string{
		`{"child_id":1,"task_id":1,"due_on":"2026-02-01","completed":true}`, // 1 past, done, Vacuum
		`{"child_id":1,"task_id":2,"due_on":"2026-02-05"}`,                  // 2 today, pending, Dishes
		`{"child_id":2,"task_id":1,"due_on":"2026-02-10"}`,                  // 3 future, pending, Vacuum
		`{"child_id":2,"task_id":2,"due_on":"2026-01-20"}`,                  // 4 past, pending, Dishes
	} {
		require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v2/chores", body).Code)
	}

	ids := func(q string) []int64 {
		rec := env.do(t, "GET", "/api/v2/chores"+q, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var out []int64
		for _, c := range decode[[]serializer.ChoreV2](t, rec) {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(""))
	assert.Equal(t, []int64{1}, ids("?done=true"))
	assert.Equal(t, []int64{2, 3, 4}, ids("?done=false"))
	assert.Equal(t, []int64{2, 3}, ids("?upcoming=true"))
	assert.Equal(t, []int64{1, 4}, ids("?upcoming=nope"))
	assert.Equal(t, []int64{4, 1, 2, 3}, ids("?chronological=true"))
	assert.Equal(t, []int64{2, 4, 1, 3}, ids("?by_task=true"))
	assert.Equal(t, []int64{4, 2, 1, 3}, ids("?by_task=true&chronological=true"))
	assert.Equal(t, []int64{4, 2, 3}, ids("?done=false&by_task=true&chronological=true&upcoming="))
}

func TestChoreReferenceDeletedDuringWrite(t *testing.T) {
	env := newTestEnv(t, config.DeleteRestrict)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v2/children", `{"first_name":"Ada","last_name":"Lovelace"}`).Code)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v1/tasks", `{"name":"Dishes","points":5}`).Code)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v1/tasks", `{"name":"Vacuum","points":2}`).Code)

	// The task row vanishes after the handler's existence check but before
	// the chore row is written.
	_, err := env.db.ExecContext(context.Background(), `CREATE TRIGGER drop_task_before_insert BEFORE INSERT ON chores
		BEGIN DELETE FROM tasks WHERE id = NEW.task_id; END`)
	require.NoError(t, err)

	rec := env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":1,"due_on":"2026-02-05"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, map[string][]string{"task": {"must exist"}}, decode[errorsBody](t, rec).Errors)

	_, err = env.db.ExecContext(context.Background(), `DROP TRIGGER drop_task_before_insert`)
	require.NoError(t, err)
	rec = env.do(t, "POST", "/api/v2/chores", `{"child_id":1,"task_id":2,"due_on":"2026-02-05"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, err = env.db.ExecContext(context.Background(), `CREATE TRIGGER drop_task_before_update BEFORE UPDATE ON chores
		BEGIN DELETE FROM tasks WHERE id = NEW.task_id AND id <> OLD.task_id; END`)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/v1/tasks", `{"name":"Laundry","points":3}`).Code)

	rec = env.do(t, "PATCH", "/api/v2/chores/1", `{"task_id":3}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, map[string][]string{"task": {"must exist"}}, decode[errorsBody](t, rec).Errors)
}
