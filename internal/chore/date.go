package chore

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock reports the current time. Handlers take one so tests can pin "today".
type Clock func() time.Time

// Today returns the calendar date of now in loc. A nil clock uses time.Now.
func Today(clock Clock, loc *time.Location) civil.Date {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(clock().In(loc))
}
