package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/choretracker/internal/chore"
	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
	"github.com/dukerupert/choretracker/internal/serializer"
	"github.com/dukerupert/choretracker/internal/store"
)

// ChoreView selects the response shape for chores.
type ChoreView int

const (
	// ChoreViewV1 renders child_id and a task preview.
	ChoreViewV1 ChoreView = iota
	// ChoreViewV2 renders child and task previews.
	ChoreViewV2
)

type ChoreHandler struct {
	choreStore *store.ChoreStore
	childStore *store.ChildStore
	taskStore  *store.TaskStore
	view       ChoreView
	clock      chore.Clock
	loc        *time.Location
	logger     *slog.Logger
}

func NewChoreHandler(chs *store.ChoreStore, cs *store.ChildStore, ts *store.TaskStore, view ChoreView, loc *time.Location, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		choreStore: chs,
		childStore: cs,
		taskStore:  ts,
		view:       view,
		clock:      time.Now,
		loc:        loc,
		logger:     logger,
	}
}

// WithClock replaces the clock used to decide which chores are upcoming.
func (h *ChoreHandler) WithClock(clock chore.Clock) *ChoreHandler {
	h.clock = clock
	return h
}

func (h *ChoreHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type choreParams struct {
	ChildID   *int64  `json:"child_id" form:"child_id"`
	TaskID    *int64  `json:"task_id" form:"task_id"`
	DueOn     *string `json:"due_on" form:"due_on"`
	Completed *bool   `json:"completed" form:"completed"`
}

type choreRecord struct {
	ChildID   int64  `json:"child_id" validate:"required"`
	TaskID    int64  `json:"task_id" validate:"required"`
	DueOn     string `json:"due_on" validate:"required"`
	Completed bool   `json:"completed"`

	due civil.Date
}

func (p choreParams) apply(rec *choreRecord) {
	if p.ChildID != nil {
		rec.ChildID = *p.ChildID
	}
	if p.TaskID != nil {
		rec.TaskID = *p.TaskID
	}
	if p.DueOn != nil {
		rec.DueOn = strings.TrimSpace(*p.DueOn)
	}
	if p.Completed != nil {
		rec.Completed = *p.Completed
	}
}

func (h *ChoreHandler) serialize(c model.Chore) any {
	if h.view == ChoreViewV2 {
		return serializer.NewChoreV2(c)
	}
	return serializer.NewChore(c)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ChoreFilter{
		ChoreParams: query.ParseChoreParams(r.URL.Query()),
		Today:       chore.Today(h.clock, h.loc),
	}
	chores, err := h.choreStore.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeInternal(w)
		return
	}

	if h.view == ChoreViewV2 {
		writeJSON(w, http.StatusOK, serializer.NewChoresV2(chores))
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewChores(chores))
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.serialize(*c))
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec choreRecord
	if !h.bindRecord(w, r, &rec) {
		return
	}

	c, err := h.choreStore.Create(r.Context(), rec.ChildID, rec.TaskID, rec.due, rec.Completed)
	if errors.Is(err, store.ErrMissingReference) {
		h.writeReferenceErrors(w, r, &rec)
		return
	}
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("chore created", "chore_id", c.ID, "child_id", c.ChildID, "task_id", c.TaskID)
	writeCreated(w, r, c.ID, h.serialize(*c))
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	rec := choreRecord{
		ChildID:   existing.ChildID,
		TaskID:    existing.TaskID,
		DueOn:     existing.DueOn.String(),
		Completed: existing.Completed,
	}
	if !h.bindRecord(w, r, &rec) {
		return
	}

	c, err := h.choreStore.Update(r.Context(), existing.ID, rec.ChildID, rec.TaskID, rec.due, rec.Completed)
	if errors.Is(err, store.ErrMissingReference) {
		h.writeReferenceErrors(w, r, &rec)
		return
	}
	if err != nil {
		h.logger.Error("update chore", "chore_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, h.serialize(*c))
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.choreStore.Delete(r.Context(), existing.ID); err != nil {
		h.logger.Error("delete chore", "chore_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bindRecord decodes and validates rec, including the due date format and
// that the referenced child and task exist.
func (h *ChoreHandler) bindRecord(w http.ResponseWriter, r *http.Request, rec *choreRecord) bool {
	var params choreParams
	errs, err := bind(w, r, &params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if !errs.Empty() {
		writeErrors(w, errs)
		return false
	}
	params.apply(rec)

	errs = validateRecord(rec)
	if rec.DueOn != "" {
		due, err := civil.ParseDate(rec.DueOn)
		if err != nil {
			errs.Add("due_on", "is not a date")
		}
		rec.due = due
	}
	if err := h.checkReferences(r, rec, errs); err != nil {
		writeInternal(w)
		return false
	}

	if !errs.Empty() {
		writeErrors(w, errs)
		return false
	}
	return true
}

// checkReferences adds "must exist" errors for a child or task id that does
// not resolve.
func (h *ChoreHandler) checkReferences(r *http.Request, rec *choreRecord, errs Errors) error {
	if rec.ChildID != 0 {
		child, err := h.childStore.GetByID(r.Context(), rec.ChildID)
		if err != nil {
			h.logger.Error("check child", "child_id", rec.ChildID, "error", err)
			return err
		}
		if child == nil {
			errs.Add("child", "must exist")
		}
	}
	if rec.TaskID != 0 {
		task, err := h.taskStore.GetByID(r.Context(), rec.TaskID)
		if err != nil {
			h.logger.Error("check task", "task_id", rec.TaskID, "error", err)
			return err
		}
		if task == nil {
			errs.Add("task", "must exist")
		}
	}
	return nil
}

// writeReferenceErrors answers a write the database refused because a child
// or task disappeared after validation.
func (h *ChoreHandler) writeReferenceErrors(w http.ResponseWriter, r *http.Request, rec *choreRecord) {
	errs := Errors{}
	if err := h.checkReferences(r, rec, errs); err != nil {
		writeInternal(w)
		return
	}
	if errs.Empty() {
		errs.Add("base", "is invalid")
	}
	writeErrors(w, errs)
}

func (h *ChoreHandler) load(w http.ResponseWriter, r *http.Request) (*model.Chore, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	c, err := h.choreStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get chore", "chore_id", id, "error", err)
		writeInternal(w)
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return nil, false
	}
	return c, true
}
