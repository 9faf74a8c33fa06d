package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choretracker/internal/auth"
	"github.com/dukerupert/choretracker/internal/middleware"
	"github.com/dukerupert/choretracker/internal/store"
)

type TokenHandler struct {
	store  *store.UserStore
	logger *slog.Logger
}

func NewTokenHandler(us *store.UserStore, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{store: us, logger: logger}
}

// Issue exchanges HTTP Basic email/password credentials for the user's API key.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok || email == "" || password == "" {
		middleware.Unauthorized(w, "Basic")
		return
	}

	u, err := h.store.GetByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("token lookup", "error", err)
		writeInternal(w)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordDigest, password) {
		h.logger.Warn("token request rejected", "remote", middleware.RemoteIP(r))
		middleware.Unauthorized(w, "Basic")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": u.APIKey})
}
