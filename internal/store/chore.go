package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

// ChoreFilter narrows ChoreStore.List. Today is the boundary for the upcoming
// toggle: a chore due today is upcoming.
type ChoreFilter struct {
	query.ChoreParams
	Today    civil.Date
	ChildIDs []int64
}

func scanChore(s scanner) (*model.Chore, error) {
	var (
		c     model.Chore
		child model.Child
		task  model.Task
		due   string
	)
	err := s.Scan(
		&c.ID, &c.ChildID, &c.TaskID, &due, &c.Completed, &c.CreatedAt, &c.UpdatedAt,
		&child.ID, &child.FirstName, &child.LastName, &child.Active,
		&task.ID, &task.Name, &task.Points, &task.Active,
	)
	if err != nil {
		return nil, err
	}
	c.DueOn, err = civil.ParseDate(due)
	if err != nil {
		return nil, fmt.Errorf("parse due_on %q: %w", due, err)
	}
	c.Child = &child
	c.Task = &task
	return &c, nil
}

const choreSelect = `SELECT ch.id, ch.child_id, ch.task_id, ch.due_on, ch.completed, ch.created_at, ch.updated_at,
	c.id, c.first_name, c.last_name, c.active,
	t.id, t.name, t.points, t.active
	FROM chores ch
	JOIN children c ON c.id = ch.child_id
	JOIN tasks t ON t.id = ch.task_id`

func (s *ChoreStore) Create(ctx context.Context, childID, taskID int64, dueOn civil.Date, completed bool) (*model.Chore, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (child_id, task_id, due_on, completed) VALUES (?, ?, ?, ?)`,
		childID, taskID, dueOn.String(), boolInt(completed),
	)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("insert chore: %w", ErrMissingReference)
	}
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) GetByID(ctx context.Context, id int64) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx, choreSelect+` WHERE ch.id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// List applies the done and upcoming toggles, then orders by task name and/or
// due date when requested, always finishing with the chore id.
func (s *ChoreStore) List(ctx context.Context, f ChoreFilter) ([]model.Chore, error) {
	var w where
	if f.Done.Set() {
		w.add(`ch.completed = ?`, boolInt(f.Done.Bool()))
	}
	if f.Upcoming.Set() {
		if f.Upcoming.Bool() {
			w.add(`ch.due_on >= ?`, f.Today.String())
		} else {
			w.add(`ch.due_on < ?`, f.Today.String())
		}
	}
	if len(f.ChildIDs) > 0 {
		args := make([]any, len(f.ChildIDs))
		for i, id := range f.ChildIDs {
			args[i] = id
		}
		w.add(`ch.child_id IN (`+placeholders(len(args))+`)`, args...)
	}

	order := ` ORDER BY `
	if f.ByTask {
		order += `t.name ASC, ch.task_id ASC, `
	}
	if f.Chronological {
		order += `ch.due_on ASC, `
	}
	order += `ch.id ASC`

	rows, err := s.db.QueryContext(ctx, choreSelect+w.String()+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// ListByChildren groups the chores of the given children by child id.
func (s *ChoreStore) ListByChildren(ctx context.Context, childIDs []int64) (map[int64][]model.Chore, error) {
	grouped := make(map[int64][]model.Chore, len(childIDs))
	if len(childIDs) == 0 {
		return grouped, nil
	}
	chores, err := s.List(ctx, ChoreFilter{ChildIDs: childIDs})
	if err != nil {
		return nil, err
	}
	for _, c := range chores {
		grouped[c.ChildID] = append(grouped[c.ChildID], c)
	}
	return grouped, nil
}

func (s *ChoreStore) Update(ctx context.Context, id, childID, taskID int64, dueOn civil.Date, completed bool) (*model.Chore, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chores SET child_id = ?, task_id = ?, due_on = ?, completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		childID, taskID, dueOn.String(), boolInt(completed), id,
	)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("update chore: %w", ErrMissingReference)
	}
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}
