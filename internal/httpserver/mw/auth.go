package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
)

// AccessTokenParam carries the token for clients that cannot set headers
// (browser websockets).
const AccessTokenParam = "access_token"

// Authenticate verifies the session token and stores its user in the
// request context. A request without a token passes through anonymous;
// handlers decide whether that is enough. A bad token is rejected.
func Authenticate(a *auth.Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := a.Verify(token)
			if err != nil {
				log.Debug("rejected session token", logger.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				reject(w, http.StatusUnauthorized, "not_authenticated", "invalid or expired session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get(AccessTokenParam))
}
