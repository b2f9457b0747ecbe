package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/middleware"
	"birthdaybook/internal/models"
	"birthdaybook/pkg/features"
	"birthdaybook/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgAccountCreated   = "Account Created! You are now able to login"
	msgLoginFailed      = "Login Unsuccessful. Please check email and password"
	msgUsernameTaken    = "That username is taken. Please choose a different one."
	msgEmailTaken       = "That email is taken. Please choose a different one."
	msgRegistrationShut = "Registration is currently closed."
)

// Register lida com GET e POST de /register.
func (h *Handler) Register(c *gin.Context) {
	if !features.IsEnabled(features.Registration) {
		middleware.AddFlash(c, middleware.FlashInfo, msgRegistrationShut)
		h.redirect(c, "/home")
		return
	}

	var form RegistrationForm
	if c.Request.Method != http.MethodPost {
		h.renderRegister(c, form, nil)
		return
	}

	errs := bindForm(c, &form)
	if len(errs) == 0 {
		if err := h.checkUnique(c, form.Username, form.Email, 0, errs); err != nil {
			h.InternalError(c, err)
			return
		}
	}
	if len(errs) > 0 {
		h.renderRegister(c, form, errs)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.InternalError(c, err)
		return
	}

	user := &models.User{Username: form.Username, Email: form.Email, PasswordHash: hash}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		var dup *models.DuplicateKeyError
		if errors.As(err, &dup) {
			// Lost a race with a concurrent registration.
			h.renderRegister(c, form, duplicateFieldErrors(dup))
			return
		}
		h.InternalError(c, err)
		return
	}

	metrics.Registrations.Inc()
	h.log.Info("User registered", zap.Uint("user_id", user.ID))
	middleware.AddFlash(c, middleware.FlashSuccess, msgAccountCreated)
	h.redirect(c, "/login")
}

func (h *Handler) renderRegister(c *gin.Context, form RegistrationForm, errs FormErrors) {
	h.render(c, http.StatusOK, "register.html", "Register", gin.H{"Form": form, "Errors": errs})
}

// checkUnique adds field errors for a username or email owned by a user other than exceptID.
func (h *Handler) checkUnique(c *gin.Context, username, email string, exceptID uint, errs FormErrors) error {
	ctx := c.Request.Context()
	taken, err := h.users.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		errs["username"] = msgUsernameTaken
	}
	taken, err = h.users.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		errs["email"] = msgEmailTaken
	}
	return nil
}

func duplicateFieldErrors(dup *models.DuplicateKeyError) FormErrors {
	if dup.Field == "email" {
		return FormErrors{"email": msgEmailTaken}
	}
	return FormErrors{"username": msgUsernameTaken}
}

// Login lida com GET e POST de /login.
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if c.Request.Method != http.MethodPost {
		h.renderLogin(c, form, nil)
		return
	}

	if errs := bindForm(c, &form); len(errs) > 0 {
		h.renderLogin(c, form, errs)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), form.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		h.InternalError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, form.Password) {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultFailure).Inc()
		middleware.AddFlash(c, middleware.FlashDanger, msgLoginFailed)
		h.renderLogin(c, form, nil)
		return
	}

	if err := auth.Login(c, user, form.Remember); err != nil {
		h.InternalError(c, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()
	h.redirect(c, safeNext(c.Query("next")))
}

func (h *Handler) renderLogin(c *gin.Context, form LoginForm, errs FormErrors) {
	form.Password = ""
	h.render(c, http.StatusOK, "login.html", "Login", gin.H{"Form": form, "Errors": errs})
}

// Logout clears the session and goes home.
func (h *Handler) Logout(c *gin.Context) {
	auth.Logout(c)
	h.redirect(c, "/home")
}

// safeNext accepts only local paths, so ?next= cannot bounce users to another site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/home"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/home"
	}
	return next
}
