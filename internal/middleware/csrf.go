package middleware

import (
	"net/http"

	phxlog "birthdaybook/pkg/log"

	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
	"go.uber.org/zap"
)

const (
	// CSRFFieldName is the hidden form field every POST form carries.
	CSRFFieldName = "csrf_token"
	// CSRFHeaderName is accepted as an alternative to the form field.
	CSRFHeaderName = "X-CSRF-Token"

	csrfInstalledKey = "csrfInstalled"
)

// CSRFErrorMessage is the body of the 400 response on a token mismatch.
const CSRFErrorMessage = "The CSRF token is missing or invalid."

var allMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
	http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// CSRF keeps the token salt in the state session (see State) and, when
// enabled, rejects unsafe requests that do not echo the token back.
// Disabled, tokens are still issued so templates render unchanged.
func CSRF(secret string, enabled bool) gin.HandlerFunc {
	opts := csrf.Options{
		Secret:      secret,
		TokenGetter: csrfTokenFromRequest,
		ErrorFunc: func(c *gin.Context) {
			phxlog.L.Warn("CSRF token mismatch", zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()))
			c.String(http.StatusBadRequest, CSRFErrorMessage)
			c.Abort()
		},
	}
	if enabled {
		opts.IgnoreMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace}
	} else {
		opts.IgnoreMethods = allMethods
	}
	protect := csrf.Middleware(opts)

	return func(c *gin.Context) {
		c.Set(csrfInstalledKey, true)
		protect(c)
	}
}

func csrfTokenFromRequest(c *gin.Context) string {
	if t := c.PostForm(CSRFFieldName); t != "" {
		return t
	}
	return c.GetHeader(CSRFHeaderName)
}

// CSRFToken returns the token to embed in forms, or "" on routes the
// CSRF middleware does not cover.
func CSRFToken(c *gin.Context) string {
	if !c.GetBool(csrfInstalledKey) {
		return ""
	}
	return csrf.GetToken(c)
}
