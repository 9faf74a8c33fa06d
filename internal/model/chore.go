package model

import (
	"time"

	"cloud.google.com/go/civil"
)

type Chore struct {
	ID        int64      `json:"id"`
	ChildID   int64      `json:"child_id"`
	TaskID    int64      `json:"task_id"`
	DueOn     civil.Date `json:"due_on"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Child and Task are filled in by store reads.
	Child *Child `json:"-"`
	Task  *Task  `json:"-"`
}
