package apidoc

import (
	"net/http"
	"strings"
)

// Resource describes one CRUD collection for documentation.
type Resource struct {
	Prefix   string // e.g. "/api/v1"
	Name     string // plural path segment, e.g. "tasks"
	Singular string
	Filters  []Param
	Fields   []Param
	Extra    []Endpoint
}

var authHeader = Param{
	Name:        "Authorization",
	In:          InHeader,
	Required:    true,
	Description: "Authentication token in the format of: Token token=<token>",
}

var idParam = Param{Name: "id", In: InPath, Type: "integer", Required: true}

// Endpoints expands r into its list, show, create, update and delete operations.
func (r Resource) Endpoints() []Endpoint {
	collection := r.Prefix + "/" + r.Name
	member := collection + "/{id}"
	tag := r.Name

	withAuth := func(params ...Param) []Param {
		return append([]Param{authHeader}, params...)
	}
	fields := func(required bool) []Param {
		out := make([]Param, len(r.Fields))
		for i, f := range r.Fields {
			f.In = InForm
			f.Required = f.Required && required
			out[i] = f
		}
		return out
	}
	unauthorized := Response{Code: http.StatusUnauthorized, Description: "Bad Credentials"}
	notFound := Response{Code: http.StatusNotFound}
	invalid := Response{Code: http.StatusUnprocessableEntity, Description: "Validation errors keyed by field"}

	eps := []Endpoint{
		{
			Method: http.MethodGet, Path: collection, Tag: tag,
			Summary:   "Fetches all " + r.Name,
			Notes:     "Filters fire when present; only the literal value \"true\" selects the filter, any other value its inverse.",
			Params:    withAuth(r.Filters...),
			Responses: []Response{{Code: http.StatusOK}, unauthorized},
		},
		{
			Method: http.MethodGet, Path: member, Tag: tag,
			Summary:   "Shows one " + r.Singular,
			Params:    withAuth(idParam),
			Responses: []Response{{Code: http.StatusOK}, unauthorized, notFound},
		},
		{
			Method: http.MethodPost, Path: collection, Tag: tag,
			Summary:   "Creates a new " + r.Singular,
			Params:    withAuth(fields(true)...),
			Responses: []Response{{Code: http.StatusCreated}, unauthorized, invalid},
		},
		{
			Method: http.MethodPatch, Path: member, Tag: tag,
			Summary:   "Updates an existing " + r.Singular,
			Params:    withAuth(append([]Param{idParam}, fields(false)...)...),
			Responses: []Response{{Code: http.StatusOK}, unauthorized, notFound, invalid},
		},
		{
			Method: http.MethodPut, Path: member, Tag: tag,
			Summary:   "Updates an existing " + r.Singular,
			Params:    withAuth(append([]Param{idParam}, fields(false)...)...),
			Responses: []Response{{Code: http.StatusOK}, unauthorized, notFound, invalid},
		},
		{
			Method: http.MethodDelete, Path: member, Tag: tag,
			Summary:   "Deletes an existing " + r.Singular,
			Params:    withAuth(idParam),
			Responses: []Response{{Code: http.StatusNoContent}, unauthorized, notFound, invalid},
		},
	}
	for _, e := range r.Extra {
		e.Path = r.Prefix + e.Path
		e.Params = withAuth(e.Params...)
		if e.Tag == "" {
			e.Tag = tag
		}
		eps = append(eps, e)
	}
	return eps
}

func toggle(name, desc string) Param {
	return Param{Name: name, In: InQuery, Type: "boolean", Description: desc}
}

var (
	taskFilters = []Param{
		toggle("active", "true for active tasks, any other value for inactive"),
		toggle("alphabetical", "true to order by name"),
	}
	taskFields = []Param{
		{Name: "name", Type: "string", Required: true},
		{Name: "points", Type: "integer", Required: true},
		{Name: "active", Type: "boolean"},
	}
	childFilters = []Param{
		toggle("active", "true for active children, any other value for inactive"),
		toggle("alphabetical", "true to order by first then last name"),
	}
	childFields = []Param{
		{Name: "first_name", Type: "string", Required: true},
		{Name: "last_name", Type: "string", Required: true},
		{Name: "active", Type: "boolean"},
	}
	choreFilters = []Param{
		toggle("done", "true for completed chores, any other value for pending"),
		toggle("upcoming", "true for chores due today or later, any other value for past"),
		toggle("by_task", "true to order by task name"),
		toggle("chronological", "true to order by due date"),
	}
	choreFields = []Param{
		{Name: "child_id", Type: "integer", Required: true},
		{Name: "task_id", Type: "integer", Required: true},
		{Name: "due_on", Type: "string", Format: "date", Required: true},
		{Name: "completed", Type: "boolean"},
	}
	userFields = []Param{
		{Name: "email", Type: "string", Required: true},
		{Name: "password", Type: "string", Format: "password", Required: true},
	}
)

// API returns the documentation for every route the server mounts.
func API(version string) Doc {
	resources := []Resource{
		{Prefix: "/api/v1", Name: "tasks", Singular: "task", Filters: taskFilters, Fields: taskFields},
		{Prefix: "/api/v2", Name: "children", Singular: "child", Filters: childFilters, Fields: childFields},
		{Prefix: "/api/v2", Name: "chores", Singular: "chore", Filters: choreFilters, Fields: choreFields},
		{Name: "tasks", Singular: "task", Filters: taskFilters, Fields: taskFields},
		{Name: "children", Singular: "child", Filters: childFilters, Fields: childFields},
		{Name: "chores", Singular: "chore", Filters: choreFilters, Fields: choreFields},
		{
			Name: "users", Singular: "user", Fields: userFields,
			Extra: []Endpoint{{
				Method: http.MethodPost, Path: "/users/{id}/api_key",
				Summary:   "Rotates a user's API key",
				Params:    []Param{idParam},
				Responses: []Response{{Code: http.StatusOK}, {Code: http.StatusUnauthorized}, {Code: http.StatusNotFound}},
			}},
		},
	}
	forbidden := Response{Code: http.StatusForbidden, Description: "Only the authenticated user's own record may be changed"}

	doc := Doc{
		Title:       "Chore Tracker API",
		Description: "Children, tasks and the chores that assign one to the other.",
		Version:     version,
	}
	for _, r := range resources {
		for _, e := range r.Endpoints() {
			if r.Name == "users" && (strings.HasSuffix(e.Path, "}") || strings.HasSuffix(e.Path, "/api_key")) && e.Method != http.MethodGet {
				e.Responses = append(e.Responses, forbidden)
			}
			doc.Endpoints = append(doc.Endpoints, e)
		}
	}
	doc.Endpoints = append(doc.Endpoints,
		Endpoint{
			Method: http.MethodGet, Path: "/token", Tag: "auth",
			Summary: "Exchanges HTTP Basic credentials for an API key",
			Params: []Param{{
				Name: "Authorization", In: InHeader, Required: true,
				Description: "Basic base64(email:password)",
			}},
			Responses: []Response{{Code: http.StatusOK}, {Code: http.StatusUnauthorized}, {Code: http.StatusTooManyRequests}},
		},
		Endpoint{
			Method: http.MethodGet, Path: "/health", Tag: "ops",
			Summary:   "Reports database reachability",
			Responses: []Response{{Code: http.StatusOK}, {Code: http.StatusServiceUnavailable}},
		},
	)
	return doc
}
