package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"birthdaybook/internal/models"
	"birthdaybook/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// SessionClaims identifies the logged-in user.
type SessionClaims struct {
	UserID   uint `json:"uid"`
	Remember bool `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token for user valid for ttl.
func GenerateSessionToken(user *models.User, remember bool, ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID:           user.ID,
		Remember:         remember,
		RegisteredClaims: registeredClaims(strconv.FormatUint(uint64(user.ID), 10), audienceSession, ttl),
	}
	return signToken(claims)
}

// ValidateSessionToken returns the claims of a valid session token.
func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parseToken(tokenString, claims, audienceSession); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("session token without user")
	}
	return claims, nil
}

// Login issues the session cookie. With remember the cookie outlives the
// browser session (RememberMeTTL); otherwise it has no Max-Age and the token
// itself expires after SessionTTL.
func Login(c *gin.Context, user *models.User, remember bool) error {
	ttl := config.Cfg.SessionTTL
	maxAge := 0
	if remember {
		ttl = config.Cfg.RememberMeTTL
		maxAge = int(ttl.Seconds())
	}

	token, err := GenerateSessionToken(user, remember, ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", config.Cfg.CookieSecure, true)
	return nil
}

// Logout expires the session cookie.
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", config.Cfg.CookieSecure, true)
}
