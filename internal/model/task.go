package model

import "time"

type Task struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
