// Package serializer shapes model values into response bodies. Associations
// are rendered through narrow preview types so a chore never expands into a
// full child or task graph.
package serializer

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/dukerupert/choretracker/internal/model"
)

type Task struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Active bool   `json:"active"`
}

// TaskPreview is the task as embedded in a chore.
type TaskPreview struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ChildPreview is the child as embedded in a v2 chore.
type ChildPreview struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Chore is the v1 shape, also used for a child's chore list.
type Chore struct {
	ID        int64       `json:"id"`
	ChildID   int64       `json:"child_id"`
	Task      TaskPreview `json:"task"`
	DueOn     civil.Date  `json:"due_on"`
	Completed bool        `json:"completed"`
}

// ChoreV2 embeds a child preview in place of child_id.
type ChoreV2 struct {
	ID        int64        `json:"id"`
	Child     ChildPreview `json:"child"`
	Task      TaskPreview  `json:"task"`
	DueOn     civil.Date   `json:"due_on"`
	Completed bool         `json:"completed"`
}

type Child struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PointsEarned int     `json:"points_earned"`
	Active       bool    `json:"active"`
	Chores       []Chore `json:"chores"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	APIKey    string    `json:"api_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTask(t model.Task) Task {
	return Task{ID: t.ID, Name: t.Name, Points: t.Points, Active: t.Active}
}

func NewTasks(tasks []model.Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = NewTask(t)
	}
	return out
}

func newTaskPreview(c model.Chore) TaskPreview {
	p := TaskPreview{ID: c.TaskID}
	if c.Task != nil {
		p.Name = c.Task.Name
		p.Points = c.Task.Points
	}
	return p
}

func NewChore(c model.Chore) Chore {
	return Chore{
		ID:        c.ID,
		ChildID:   c.ChildID,
		Task:      newTaskPreview(c),
		DueOn:     c.DueOn,
		Completed: c.Completed,
	}
}

func NewChores(chores []model.Chore) []Chore {
	out := make([]Chore, len(chores))
	for i, c := range chores {
		out[i] = NewChore(c)
	}
	return out
}

func NewChoreV2(c model.Chore) ChoreV2 {
	child := ChildPreview{ID: c.ChildID}
	if c.Child != nil {
		child.Name = c.Child.Name()
	}
	return ChoreV2{
		ID:        c.ID,
		Child:     child,
		Task:      newTaskPreview(c),
		DueOn:     c.DueOn,
		Completed: c.Completed,
	}
}

func NewChoresV2(chores []model.Chore) []ChoreV2 {
	out := make([]ChoreV2, len(chores))
	for i, c := range chores {
		out[i] = NewChoreV2(c)
	}
	return out
}

// NewChild renders c with the given chores, which may be nil.
func NewChild(c model.Child, chores []model.Chore) Child {
	return Child{
		ID:           c.ID,
		Name:         c.Name(),
		PointsEarned: c.PointsEarned,
		Active:       c.Active,
		Chores:       NewChores(chores),
	}
}

// NewChildren renders each child with its entry from choresByChild.
func NewChildren(children []model.Child, choresByChild map[int64][]model.Chore) []Child {
	out := make([]Child, len(children))
	for i, c := range children {
		out[i] = NewChild(c, choresByChild[c.ID])
	}
	return out
}

// NewUser renders u. The api key is only included for viewerID's own record.
func NewUser(u model.User, viewerID int64) User {
	out := User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
	if u.ID == viewerID {
		out.APIKey = u.APIKey
	}
	return out
}

// NewUserWithKey renders u including its api key, for responses that hand
// out credentials.
func NewUserWithKey(u model.User) User {
	return User{ID: u.ID, Email: u.Email, APIKey: u.APIKey, CreatedAt: u.CreatedAt}
}

func NewUsers(users []model.User, viewerID int64) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = NewUser(u, viewerID)
	}
	return out
}
