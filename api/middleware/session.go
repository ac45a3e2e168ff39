package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/keksoko/storefront/pkg/config"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/keksoko/storefront/pkg/session"
)

// Session identifies the anonymous buyer behind each request. A valid
// session cookie is parsed; a missing or unreadable one is replaced
// with a freshly minted identity so every caller always has a session.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				if parsed, err := session.Parse(cfg, cookie.Value); err == nil {
					sessionID = parsed
				} else if logg != nil {
					logg.Debug(ctx, "session cookie rejected, minting a new one")
				}
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				token, err := session.Mint(cfg, time.Now(), sessionID)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "mint session token", err)
					}
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL().Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			if token := bearerToken(r); token != "" {
				ctx = WithAuthToken(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
