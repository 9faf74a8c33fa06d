package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/choretracker/internal/config"
	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/query"
	"github.com/dukerupert/choretracker/internal/serializer"
	"github.com/dukerupert/choretracker/internal/store"
)

type TaskHandler struct {
	store   *store.TaskStore
	cascade bool
	logger  *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, policy config.DeletePolicy, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{store: ts, cascade: policy == config.DeleteCascade, logger: logger}
}

// Routes mounts the task collection on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// taskParams lists the fields a client may set on a task.
type taskParams struct {
	Name   *string `json:"name" form:"name"`
	Points *int    `json:"points" form:"points"`
	Active *bool   `json:"active" form:"active"`
}

type taskRecord struct {
	Name   string `json:"name" validate:"required"`
	Points *int   `json:"points" validate:"required,gte=0"`
	Active bool   `json:"active"`
}

func (p taskParams) apply(rec *taskRecord) {
	if p.Name != nil {
		rec.Name = strings.TrimSpace(*p.Name)
	}
	if p.Points != nil {
		rec.Points = p.Points
	}
	if p.Active != nil {
		rec.Active = *p.Active
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.List(r.Context(), query.ParseTaskParams(r.URL.Query()))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewTasks(tasks))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewTask(*task))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	rec := taskRecord{Active: true}
	if !h.bindRecord(w, r, &rec) {
		return
	}

	task, err := h.store.Create(r.Context(), rec.Name, *rec.Points, rec.Active)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("task created", "task_id", task.ID)
	writeCreated(w, r, task.ID, serializer.NewTask(*task))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	points := existing.Points
	rec := taskRecord{Name: existing.Name, Points: &points, Active: existing.Active}
	if !h.bindRecord(w, r, &rec) {
		return
	}

	task, err := h.store.Update(r.Context(), existing.ID, rec.Name, *rec.Points, rec.Active)
	if err != nil {
		h.logger.Error("update task", "task_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewTask(*task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), existing.ID, h.cascade)
	if errors.Is(err, store.ErrHasChores) {
		writeErrors(w, Errors{"base": {hasChoresMessage}})
		return
	}
	if err != nil {
		h.logger.Error("delete task", "task_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("task deleted", "task_id", existing.ID, "cascade", h.cascade)
	w.WriteHeader(http.StatusNoContent)
}

// bindRecord decodes the request onto rec and validates the result. It writes
// the error response and returns false when the request cannot proceed.
func (h *TaskHandler) bindRecord(w http.ResponseWriter, r *http.Request, rec *taskRecord) bool {
	var params taskParams
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
	if errs := validateRecord(rec); !errs.Empty() {
		writeErrors(w, errs)
		return false
	}
	return true
}

func (h *TaskHandler) load(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	task, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeInternal(w)
		return nil, false
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return task, true
}
