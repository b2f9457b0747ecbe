package middleware

import (
	"encoding/gob"
	"net/http"

	phxlog "birthdaybook/pkg/log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stateCookieName holds flash messages and the CSRF token. The login
// session lives in its own cookie (auth.SessionCookieName).
const stateCookieName = "birthdaybook_state"

// Flash categories, as used by the templates' alert classes.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// NewStateStore returns the signed cookie store backing flashes and CSRF.
func NewStateStore(secret string, secure bool) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// State installs the cookie-backed state session.
func State(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(stateCookieName, store)
}

// AddFlash queues a notice for the next page render.
func AddFlash(c *gin.Context, category, message string) {
	s := sessions.Default(c)
	s.AddFlash(Flash{Category: category, Message: message})
	if err := s.Save(); err != nil {
		phxlog.L.Warn("Failed to save flash message", zap.Error(err))
	}
}

// Flashes pops the queued notices. Call it before writing the response body.
func Flashes(c *gin.Context) []Flash {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(); err != nil {
		phxlog.L.Warn("Failed to clear flash messages", zap.Error(err))
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
