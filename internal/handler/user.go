package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/choretracker/internal/auth"
	"github.com/dukerupert/choretracker/internal/model"
	"github.com/dukerupert/choretracker/internal/serializer"
	"github.com/dukerupert/choretracker/internal/store"
)

type UserHandler struct {
	store  *store.UserStore
	logger *slog.Logger
}

func NewUserHandler(us *store.UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: us, logger: logger}
}

func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/api_key", h.RotateAPIKey)
}

type userParams struct {
	Email    *string `json:"email" form:"email"`
	Password *string `json:"password" form:"password"`
}

type userRecord struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (p userParams) apply(rec *userRecord) {
	if p.Email != nil {
		rec.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Password != nil {
		rec.Password = *p.Password
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewUsers(users, auth.UserID(r.Context())))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewUser(*u, auth.UserID(r.Context())))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec userRecord
	if !h.bindRecord(w, r, &rec, 0) {
		return
	}

	digest, err := auth.HashPassword(rec.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeInternal(w)
		return
	}
	u, err := h.store.Create(r.Context(), rec.Email, digest, auth.NewAPIKey())
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("user created", "user_id", u.ID, "by", auth.UserID(r.Context()))
	writeCreated(w, r, u.ID, serializer.NewUserWithKey(*u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadSelf(w, r)
	if !ok {
		return
	}

	rec := userRecord{Email: existing.Email}
	if !h.bindRecord(w, r, &rec, existing.ID) {
		return
	}

	digest := existing.PasswordDigest
	if rec.Password != "" {
		var err error
		if digest, err = auth.HashPassword(rec.Password); err != nil {
			h.logger.Error("hash password", "error", err)
			writeInternal(w)
			return
		}
	}
	u, err := h.store.Update(r.Context(), existing.ID, rec.Email, digest)
	if err != nil {
		h.logger.Error("update user", "user_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, serializer.NewUserWithKey(*u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadSelf(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), existing.ID); err != nil {
		h.logger.Error("delete user", "user_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("user deleted", "user_id", existing.ID)
	w.WriteHeader(http.StatusNoContent)
}

// RotateAPIKey issues a fresh key; the old one stops working immediately.
func (h *UserHandler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadSelf(w, r)
	if !ok {
		return
	}
	u, err := h.store.UpdateAPIKey(r.Context(), existing.ID, auth.NewAPIKey())
	if err != nil {
		h.logger.Error("rotate api key", "user_id", existing.ID, "error", err)
		writeInternal(w)
		return
	}
	h.logger.Info("api key rotated", "user_id", u.ID)
	writeJSON(w, http.StatusOK, serializer.NewUserWithKey(*u))
}

// bindRecord validates rec for the user with id selfID, or a new user when
// selfID is zero. New users must supply a password.
func (h *UserHandler) bindRecord(w http.ResponseWriter, r *http.Request, rec *userRecord, selfID int64) bool {
	var params userParams
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
	if selfID == 0 && rec.Password == "" {
		errs.Add("password", "can't be blank")
	}
	if rec.Email != "" {
		other, err := h.store.GetByEmail(r.Context(), rec.Email)
		if err != nil {
			h.logger.Error("check email", "error", err)
			writeInternal(w)
			return false
		}
		if other != nil && other.ID != selfID {
			errs.Add("email", "has already been taken")
		}
	}

	if !errs.Empty() {
		writeErrors(w, errs)
		return false
	}
	return true
}

func (h *UserHandler) load(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	u, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get user", "user_id", id, "error", err)
		writeInternal(w)
		return nil, false
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return u, true
}

// loadSelf is load restricted to the authenticated user's own record.
func (h *UserHandler) loadSelf(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	u, ok := h.load(w, r)
	if !ok {
		return nil, false
	}
	if callerID := auth.UserID(r.Context()); u.ID != callerID {
		h.logger.Warn("user change refused", "user_id", u.ID, "caller_id", callerID)
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return u, true
}
