package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/choretracker/internal/auth"
	"github.com/dukerupert/choretracker/internal/model"
)

// Realm is announced in WWW-Authenticate challenges.
const Realm = "Application"

// TokenLookup finds the user owning an API key. It returns nil, nil when no
// user matches.
type TokenLookup interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

// RequireToken validates the `Authorization: Token token=<key>` header and
// populates AuthContext. Requests without a matching user never reach next.
func RequireToken(users TokenLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.ParseToken(r.Header.Get("Authorization"))
			if !ok {
				Unauthorized(w, "Token")
				return
			}

			user, err := users.GetByAPIKey(r.Context(), token)
			if err != nil {
				logger.Error("token lookup failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			if user == nil {
				Unauthorized(w, "Token")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: user.ID, Email: user.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Unauthorized writes the 401 challenge for the given scheme.
func Unauthorized(w http.ResponseWriter, scheme string) {
	w.Header().Set("WWW-Authenticate", scheme+` realm="`+Realm+`"`)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bad Credentials"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
