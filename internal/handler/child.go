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

type ChildHandler struct {
	childStore *store.ChildStore
	choreStore *store.ChoreStore
	cascade    bool
	logger     *slog.Logger
}

func NewChildHandler(cs *store.ChildStore, chs *store.ChoreStore, policy config.DeletePolicy, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{childStore: cs, choreStore: chs, cascade: policy == config.DeleteCascade, logger: logger}
}

func (h *ChildHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type childParams struct {
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name" form:"last_name"`
	Active    *bool   `json:"active" form:"active"`
}

type childRecord struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Active    bool   `json:"active"`
}

func (p childParams) apply(rec *childRecord) {
	if p.FirstName != nil {
		rec.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		rec.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Active != nil {
		rec.Active = *p.Active
	}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.childStore.List(r.Context(), query.ParseChildParams(r.URL.Query()))
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeInternal(w)
		return
	}

	ids := make([]int64, len(children))
	for i, c := range children {
		ids[i] = c.ID
	}
	chores, err := h.choreStore.ListByChildren(r.Context(), ids)
	if err != nil {
		h.logger.Error("list chores for children", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewChildren(children, chores))
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, child)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	rec := childRecord{Active: true}
	if !h.bindRecord(w, r, &rec) {
		return
	}

	child, err := h.childStore.Create(r.Context(), rec.FirstName, rec.LastName, rec.Active)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("child created", "child_id", child.ID)
	writeCreated(w, r, child.ID, serializer.NewChild(*child, nil))
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	rec := childRecord{FirstName: existing.FirstName, LastName: existing.LastName, Active: existing.Active}
	if !h.bindRecord(w, r, &rec) {
		return
	}

	child, err := h.childStore.Update(r.Context(), existing.ID, rec.FirstName, rec.LastName, rec.Active)
	if err != nil {
		h.logger.Error("update child", "child_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	h.render(w, r, http.StatusOK, child)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	err := h.childStore.Delete(r.Context(), existing.ID, h.cascade)
	if errors.Is(err, store.ErrHasChores) {
		writeErrors(w, Errors{"base": {hasChoresMessage}})
		return
	}
	if err != nil {
		h.logger.Error("delete child", "child_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("child deleted", "child_id", existing.ID, "cascade", h.cascade)
	w.WriteHeader(http.StatusNoContent)
}

// render writes child together with its chores.
func (h *ChildHandler) render(w http.ResponseWriter, r *http.Request, status int, child *model.Child) {
	chores, err := h.choreStore.ListByChildren(r.Context(), []int64{child.ID})
	if err != nil {
		h.logger.Error("list chores for child", "child_id", child.ID, "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, status, serializer.NewChild(*child, chores[child.ID]))
}

func (h *ChildHandler) bindRecord(w http.ResponseWriter, r *http.Request, rec *childRecord) bool {
	var params childParams
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

func (h *ChildHandler) load(w http.ResponseWriter, r *http.Request) (*model.Child, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	child, err := h.childStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get child", "child_id", id, "error", err)
		writeInternal(w)
		return nil, false
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return nil, false
	}
	return child, true
}
