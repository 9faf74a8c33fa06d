// Package apidoc describes the HTTP API declaratively and renders it as a
// Swagger 2.0 document. The metadata never influences request handling.
package apidoc

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-openapi/spec"
)

// Param locations.
const (
	InQuery  = "query"
	InPath   = "path"
	InForm   = "formData"
	InHeader = "header"
)

type Param struct {
	Name        string
	In          string
	Type        string
	Format      string
	Required    bool
	Description string
}

type Response struct {
	Code        int
	Description string
}

type Endpoint struct {
	Method    string
	Path      string
	Tag       string
	Summary   string
	Notes     string
	Params    []Param
	Responses []Response
}

// Doc is the whole API description.
type Doc struct {
	Title       string
	Description string
	Version     string
	Endpoints   []Endpoint
}

// Swagger renders d as a Swagger 2.0 document.
func (d Doc) Swagger() *spec.Swagger {
	paths := map[string]spec.PathItem{}
	tagSet := map[string]bool{}

	for _, e := range d.Endpoints {
		op := spec.NewOperation(operationID(e)).
			WithSummary(e.Summary).
			WithDescription(e.Notes).
			WithProduces("application/json")
		if e.Tag != "" {
			op.WithTags(e.Tag)
			tagSet[e.Tag] = true
		}
		if hasFormParams(e.Params) {
			op.WithConsumes("application/json", "application/x-www-form-urlencoded")
		}
		for _, p := range e.Params {
			op.AddParam(newParameter(p))
		}
		for _, r := range e.Responses {
			desc := r.Description
			if desc == "" {
				desc = http.StatusText(r.Code)
			}
			op.RespondsWith(r.Code, spec.NewResponse().WithDescription(desc))
		}

		item := paths[e.Path]
		setOperation(&item, e.Method, op)
		paths[e.Path] = item
	}

	tagNames := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tagNames = append(tagNames, t)
	}
	sort.Strings(tagNames)
	tags := make([]spec.Tag, len(tagNames))
	for i, t := range tagNames {
		tags[i] = spec.NewTag(t, "", nil)
	}

	return &spec.Swagger{SwaggerProps: spec.SwaggerProps{
		Swagger: "2.0",
		Info: &spec.Info{InfoProps: spec.InfoProps{
			Title:       d.Title,
			Description: d.Description,
			Version:     d.Version,
		}},
		Schemes: []string{"http", "https"},
		Tags:    tags,
		Paths:   &spec.Paths{Paths: paths},
	}}
}

// Handler serves the rendered document as JSON.
func (d Doc) Handler() http.HandlerFunc {
	body, err := json.Marshal(d.Swagger())
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

func setOperation(item *spec.PathItem, method string, op *spec.Operation) {
	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodDelete:
		item.Delete = op
	case http.MethodHead:
		item.Head = op
	case http.MethodOptions:
		item.Options = op
	}
}

func operationID(e Endpoint) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(e.Method))
	for _, part := range strings.Split(e.Path, "/") {
		part = strings.Trim(part, "{}")
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func hasFormParams(params []Param) bool {
	for _, p := range params {
		if p.In == InForm {
			return true
		}
	}
	return false
}

// newParameter converts p. Path parameters are always required.
func newParameter(p Param) *spec.Parameter {
	typ := p.Type
	if typ == "" {
		typ = "string"
	}
	param := &spec.Parameter{ParamProps: spec.ParamProps{
		Name:        p.Name,
		In:          p.In,
		Description: p.Description,
		Required:    p.Required || p.In == InPath,
	}}
	return param.Typed(typ, p.Format)
}
