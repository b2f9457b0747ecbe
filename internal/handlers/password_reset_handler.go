package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/middleware"
	"birthdaybook/internal/models"
	"birthdaybook/internal/notifications"
	"birthdaybook/pkg/config"
	"birthdaybook/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgResetEmailSent  = "An email has been sent with instructions to reset your password."
	msgResetInvalid    = "Invalid / Expired Token"
	msgPasswordUpdated = "Your password has been updated! You are now able to log in"
)

// ResetRequest lida com GET e POST de /reset_password.
// The outcome shown to the caller is the same whether or not the address has an account.
func (h *Handler) ResetRequest(c *gin.Context) {
	var form RequestResetForm
	if c.Request.Method != http.MethodPost {
		h.renderResetRequest(c, form, nil)
		return
	}

	if errs := bindForm(c, &form); len(errs) > 0 {
		h.renderResetRequest(c, form, errs)
		return
	}

	log := h.log.Named("ResetRequest")
	user, err := h.users.FindByEmail(c.Request.Context(), form.Email)
	switch {
	case err == nil:
		h.sendResetEmail(c.Request.Context(), user)
	case errors.Is(err, models.ErrNotFound):
		log.Info("Password reset requested for unknown email")
	default:
		log.Error("Failed to look up user for password reset", zap.Error(err))
	}

	middleware.AddFlash(c, middleware.FlashInfo, msgResetEmailSent)
	h.redirect(c, "/login")
}

// sendResetEmail issues a token and mails the link. Failures are logged only.
func (h *Handler) sendResetEmail(ctx context.Context, user *models.User) {
	log := h.log.Named("sendResetEmail").With(zap.Uint("user_id", user.ID))

	token, err := h.resetTokens.Issue(user)
	if err != nil {
		log.Error("Failed to issue password reset token", zap.Error(err))
		metrics.ResetEmails.WithLabelValues(metrics.ResultFailure).Inc()
		return
	}
	link := config.Cfg.BaseURL + "/reset_password/" + url.PathEscape(token)

	if config.Cfg.MailSendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Cfg.MailSendTimeout)
		defer cancel()
	}
	if err := notifications.SendPasswordReset(ctx, h.notifier, user.Email, link); err != nil {
		log.Error("Failed to send password reset email", zap.Error(err))
		metrics.ResetEmails.WithLabelValues(metrics.ResultFailure).Inc()
		return
	}
	metrics.ResetEmails.WithLabelValues(metrics.ResultSuccess).Inc()
}

func (h *Handler) renderResetRequest(c *gin.Context, form RequestResetForm, errs FormErrors) {
	h.render(c, http.StatusOK, "reset_request.html", "Reset Password", gin.H{"Form": form, "Errors": errs})
}

// ResetToken lida com GET e POST de /reset_password/:token.
func (h *Handler) ResetToken(c *gin.Context) {
	user, err := h.resetTokens.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			middleware.AddFlash(c, middleware.FlashWarning, msgResetInvalid)
			h.redirect(c, "/reset_password")
			return
		}
		h.InternalError(c, err)
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderResetToken(c, nil)
		return
	}

	var form ResetPasswordForm
	if errs := bindForm(c, &form); len(errs) > 0 {
		h.renderResetToken(c, errs)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.InternalError(c, err)
		return
	}

	h.log.Info("Password reset completed", zap.Uint("user_id", user.ID))
	middleware.AddFlash(c, middleware.FlashSuccess, msgPasswordUpdated)
	h.redirect(c, "/login")
}

func (h *Handler) renderResetToken(c *gin.Context, errs FormErrors) {
	h.render(c, http.StatusOK, "reset_token.html", "Reset Password", gin.H{"Errors": errs})
}
