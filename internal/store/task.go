package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(s scanner) (*model.Task, error) {
	var t model.Task
	if err := s.Scan(&t.ID, &t.Name, &t.Points, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const taskCols = `id, name, points, active, created_at, updated_at`

func (s *TaskStore) Create(ctx context.Context, name string, points int, active bool) (*model.Task, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (name, points, active) VALUES (?, ?, ?)`,
		name, points, boolInt(active),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks narrowed by the active toggle, ordered by id unless
// alphabetical ordering was requested.
func (s *TaskStore) List(ctx context.Context, f query.TaskParams) ([]model.Task, error) {
	var w where
	if f.Active.Set() {
		w.add(`active = ?`, boolInt(f.Active.Bool()))
	}
	order := ` ORDER BY id ASC`
	if f.Alphabetical {
		order = ` ORDER BY name ASC, id ASC`
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+taskCols+` FROM tasks`+w.String()+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(ctx context.Context, id int64, name string, points int, active bool) (*model.Task, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, points = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, points, boolInt(active), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a task. With cascade false it returns ErrHasChores while
// chores still reference the task.
func (s *TaskStore) Delete(ctx context.Context, id int64, cascade bool) error {
	return deleteWithChores(ctx, s.db, "tasks", "task_id", id, cascade)
}
