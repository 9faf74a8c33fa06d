package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(s scanner) (*model.Child, error) {
	var c model.Child
	err := s.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Active, &c.CreatedAt, &c.UpdatedAt, &c.PointsEarned)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `c.id, c.first_name, c.last_name, c.active, c.created_at, c.updated_at,
	(SELECT COALESCE(SUM(t.points), 0) FROM chores ch JOIN tasks t ON t.id = ch.task_id
	 WHERE ch.child_id = c.id AND ch.completed = 1)`

func (s *ChildStore) Create(ctx context.Context, firstName, lastName string, active bool) (*model.Child, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO children (first_name, last_name, active) VALUES (?, ?, ?)`,
		firstName, lastName, boolInt(active),
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChildStore) GetByID(ctx context.Context, id int64) (*model.Child, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+childCols+` FROM children c WHERE c.id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List(ctx context.Context, f query.ChildParams) ([]model.Child, error) {
	var w where
	if f.Active.Set() {
		w.add(`c.active = ?`, boolInt(f.Active.Bool()))
	}
	order := ` ORDER BY c.id ASC`
	if f.Alphabetical {
		order = ` ORDER BY c.first_name ASC, c.last_name ASC, c.id ASC`
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+childCols+` FROM children c`+w.String()+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(ctx context.Context, id int64, firstName, lastName string, active bool) (*model.Child, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE children SET first_name = ?, last_name = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		firstName, lastName, boolInt(active), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a child. With cascade false it returns ErrHasChores while
// the child still has chores.
func (s *ChildStore) Delete(ctx context.Context, id int64, cascade bool) error {
	return deleteWithChores(ctx, s.db, "children", "child_id", id, cascade)
}
