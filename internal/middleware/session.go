package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/models"
	phxlog "birthdaybook/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const currentUserKey = "currentUser"

// LoginRequiredMessage is flashed when an anonymous caller hits a protected page.
const LoginRequiredMessage = "Please log in to access this page."

// LoadUser resolves the session cookie into the current user. Invalid,
// expired or orphaned sessions leave the request anonymous.
func LoadUser(users auth.UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(auth.SessionCookieName)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}

		claims, err := auth.ValidateSessionToken(tokenString)
		if err != nil {
			auth.Logout(c)
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		switch {
		case err == nil:
			SetCurrentUser(c, user)
		case errors.Is(err, models.ErrNotFound):
			auth.Logout(c)
		default:
			phxlog.L.Error("Failed to load session user", zap.Uint("user_id", claims.UserID), zap.Error(err))
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// SetCurrentUser stores the caller in the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// RequireLogin sends anonymous callers to the login page, remembering where they were going.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		AddFlash(c, FlashInfo, LoginRequiredMessage)
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RedirectIfAuthenticated keeps logged-in callers away from login, registration and reset pages.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Redirect(http.StatusFound, "/home")
			c.Abort()
			return
		}
		c.Next()
	}
}
