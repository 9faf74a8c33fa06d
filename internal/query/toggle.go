// Package query turns optional list parameters into filter toggles.
//
// A filter parameter fires only when it is present and not blank. Once it
// fires, the literal string "true" selects the filter and every other value,
// including "false", "TRUE" and "1", selects its inverse. Ordering parameters
// fire only on the literal "true".
package query

import (
	"net/url"
	"strings"
)

// Toggle is the tri-state value of a filter parameter.
type Toggle int

const (
	Absent Toggle = iota
	True
	False
)

func (t Toggle) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "absent"
	}
}

// Set reports whether the filter should be applied at all.
func (t Toggle) Set() bool {
	return t != Absent
}

// Bool returns the branch selected by a set toggle. It is false for Absent.
func (t Toggle) Bool() bool {
	return t == True
}

// Parse reads key from v. A blank value counts as absent.
func Parse(v url.Values, key string) Toggle {
	raw := v.Get(key)
	switch {
	case strings.TrimSpace(raw) == "":
		return Absent
	case raw == "true":
		return True
	default:
		return False
	}
}

// Enabled reports whether an ordering parameter is the literal "true".
func Enabled(v url.Values, key string) bool {
	return v.Get(key) == "true"
}

// TaskParams are the list parameters accepted for tasks.
type TaskParams struct {
	Active       Toggle
	Alphabetical bool
}

// ChildParams are the list parameters accepted for children.
type ChildParams struct {
	Active       Toggle
	Alphabetical bool
}

// ChoreParams are the list parameters accepted for chores.
type ChoreParams struct {
	Done          Toggle
	Upcoming      Toggle
	ByTask        bool
	Chronological bool
}

func ParseTaskParams(v url.Values) TaskParams {
	return TaskParams{
		Active:       Parse(v, "active"),
		Alphabetical: Enabled(v, "alphabetical"),
	}
}

func ParseChildParams(v url.Values) ChildParams {
	return ChildParams{
		Active:       Parse(v, "active"),
		Alphabetical: Enabled(v, "alphabetical"),
	}
}

func ParseChoreParams(v url.Values) ChoreParams {
	return ChoreParams{
		Done:          Parse(v, "done"),
		Upcoming:      Parse(v, "upcoming"),
		ByTask:        Enabled(v, "by_task"),
		Chronological: Enabled(v, "chronological"),
	}
}
