package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"birthdaybook/internal/middleware"
	"birthdaybook/internal/models"
	"birthdaybook/pkg/config"
	"birthdaybook/pkg/features"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgAccountUpdated   = "Your account has been updated"
	msgPictureExtension = "File does not have an approved extension: jpg, png"
	msgPictureTooLarge  = "File is too large."

	// DefaultImageURL is served from the embedded static assets.
	DefaultImageURL = "/static/img/default.svg"
)

var allowedPictureTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Account lida com GET e POST de /account.
func (h *Handler) Account(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if c.Request.Method != http.MethodPost {
		h.renderAccount(c, user, UpdateAccountForm{Username: user.Username, Email: user.Email}, nil)
		return
	}

	var form UpdateAccountForm
	errs := bindForm(c, &form)
	if len(errs) == 0 {
		if err := h.checkUnique(c, form.Username, form.Email, user.ID, errs); err != nil {
			h.InternalError(c, err)
			return
		}
	}

	picture, ext := h.pictureUpload(c, errs)
	if len(errs) > 0 {
		h.renderAccount(c, user, form, errs)
		return
	}

	ctx := c.Request.Context()
	updated := *user
	updated.Username = form.Username
	updated.Email = form.Email

	var newImage string
	if picture != nil {
		name, err := h.savePicture(ctx, picture, ext)
		if err != nil {
			h.InternalError(c, err)
			return
		}
		newImage = name
		updated.ImageFile = name
	}

	if err := h.users.UpdateProfile(ctx, &updated); err != nil {
		if newImage != "" {
			h.removePicture(ctx, newImage)
		}
		var dup *models.DuplicateKeyError
		if errors.As(err, &dup) {
			h.renderAccount(c, user, form, duplicateFieldErrors(dup))
			return
		}
		h.InternalError(c, err)
		return
	}

	if newImage != "" && user.HasCustomImage() {
		h.removePicture(ctx, user.ImageFile)
	}

	middleware.AddFlash(c, middleware.FlashSuccess, msgAccountUpdated)
	h.redirect(c, "/account")
}

func (h *Handler) renderAccount(c *gin.Context, user *models.User, form UpdateAccountForm, errs FormErrors) {
	h.render(c, http.StatusOK, "account.html", "Account", gin.H{
		"Form":            form,
		"Errors":          errs,
		"ImageURL":        h.imageURL(c.Request.Context(), user),
		"PicturesEnabled": h.picturesEnabled(),
	})
}

func (h *Handler) picturesEnabled() bool {
	return h.files != nil && features.IsEnabled(features.ProfilePictures)
}

// pictureUpload returns the optional uploaded picture, recording a field error if it is unacceptable.
func (h *Handler) pictureUpload(c *gin.Context, errs FormErrors) (*multipart.FileHeader, string) {
	if !h.picturesEnabled() {
		return nil, ""
	}
	file, err := c.FormFile("picture")
	if err != nil {
		// http.ErrMissingFile, or a urlencoded form without any file part.
		return nil, ""
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedPictureTypes[ext]; !ok {
		errs["picture"] = msgPictureExtension
		return nil, ""
	}
	if config.Cfg.MaxUploadBytes > 0 && file.Size > config.Cfg.MaxUploadBytes {
		errs["picture"] = msgPictureTooLarge
		return nil, ""
	}
	return file, ext
}

// savePicture stores the upload under a random name and returns it.
func (h *Handler) savePicture(ctx context.Context, file *multipart.FileHeader, ext string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	stored, err := h.files.UploadFile(ctx, name, src, allowedPictureTypes[ext])
	if err != nil {
		return "", fmt.Errorf("store profile picture: %w", err)
	}
	return stored, nil
}

func (h *Handler) removePicture(ctx context.Context, name string) {
	if err := h.files.DeleteFile(ctx, name); err != nil {
		h.log.Warn("Failed to delete profile picture", zap.String("image_file", name), zap.Error(err))
	}
}

func (h *Handler) imageURL(ctx context.Context, user *models.User) string {
	if !user.HasCustomImage() || h.files == nil {
		return DefaultImageURL
	}
	u, err := h.files.GetURL(ctx, user.ImageFile)
	if err != nil {
		h.log.Warn("Failed to resolve profile picture URL", zap.String("image_file", user.ImageFile), zap.Error(err))
		return DefaultImageURL
	}
	return u
}
