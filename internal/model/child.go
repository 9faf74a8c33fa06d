package model

import (
	"strings"
	"time"
)

type Child struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PointsEarned is the sum of task points over the child's completed chores.
	PointsEarned int `json:"points_earned"`
}

// Name joins first and last name the way it is shown to clients.
func (c Child) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
