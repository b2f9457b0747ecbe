package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"birthdaybook/internal/middleware"
	"birthdaybook/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgRecordCreated = "Birthday Entry Successful!"
	msgRecordUpdated = "The Birthday record has been updated"
	msgRecordDeleted = "Birthday Record Deleted!"
)

// NewBirthday lida com GET e POST de /birthdaylist/new.
func (h *Handler) NewBirthday(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if c.Request.Method != http.MethodPost {
		h.renderBirthdayForm(c, "New Birthday", "New Birthday Record", BirthdayForm{}, nil)
		return
	}

	form, errs := bindBirthdayForm(c)
	if len(errs) > 0 {
		h.renderBirthdayForm(c, "New Birthday", "New Birthday Record", form, errs)
		return
	}

	record := &models.Record{Name: form.Name, Date: form.Date, UserID: user.ID}
	if err := h.records.Create(c.Request.Context(), record); err != nil {
		h.InternalError(c, err)
		return
	}

	h.log.Info("Birthday record created", zap.Uint("record_id", record.ID), zap.Uint("user_id", user.ID))
	middleware.AddFlash(c, middleware.FlashSuccess, msgRecordCreated)
	h.redirect(c, "/birthdaylist")
}

// ListBirthdays shows the caller's own records.
func (h *Handler) ListBirthdays(c *gin.Context) {
	user := middleware.CurrentUser(c)
	records, err := h.records.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.InternalError(c, err)
		return
	}
	h.render(c, http.StatusOK, "birthdaylist.html", "Birthday List", gin.H{"Records": records})
}

// UpdateBirthday lida com GET e POST de /record/:id/update.
func (h *Handler) UpdateBirthday(c *gin.Context) {
	record, ok := h.loadOwnedRecord(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		form := BirthdayForm{Name: record.Name, Date: record.Date}
		h.renderBirthdayForm(c, "Update Birthday", "Update Birthday Record", form, nil)
		return
	}

	form, errs := bindBirthdayForm(c)
	if len(errs) > 0 {
		h.renderBirthdayForm(c, "Update Birthday", "Update Birthday Record", form, errs)
		return
	}

	record.Name = form.Name
	record.Date = form.Date
	if err := h.records.Update(c.Request.Context(), record); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.InternalError(c, err)
		return
	}

	middleware.AddFlash(c, middleware.FlashSuccess, msgRecordUpdated)
	h.redirect(c, "/birthdaylist")
}

// DeleteBirthday asks for confirmation on GET and deletes on POST.
func (h *Handler) DeleteBirthday(c *gin.Context) {
	record, ok := h.loadOwnedRecord(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "record_delete.html", "Delete Birthday", gin.H{"Record": record})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.records.Delete(c.Request.Context(), record.ID, user.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.InternalError(c, err)
		return
	}

	h.log.Info("Birthday record deleted", zap.Uint("record_id", record.ID), zap.Uint("user_id", user.ID))
	middleware.AddFlash(c, middleware.FlashSuccess, msgRecordDeleted)
	h.redirect(c, "/birthdaylist")
}

// loadOwnedRecord resolves :id to a record owned by the caller. On failure it
// has already written the 404, 403 or 500 response.
func (h *Handler) loadOwnedRecord(c *gin.Context) (*models.Record, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.NotFound(c)
		return nil, false
	}

	record, err := h.records.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.NotFound(c)
			return nil, false
		}
		h.InternalError(c, err)
		return nil, false
	}

	user := middleware.CurrentUser(c)
	if !record.OwnedBy(user.ID) {
		h.log.Warn("Record access denied", zap.Uint("record_id", record.ID), zap.Uint("user_id", user.ID))
		h.Forbidden(c)
		return nil, false
	}
	return record, true
}

func (h *Handler) renderBirthdayForm(c *gin.Context, title, legend string, form BirthdayForm, errs FormErrors) {
	h.render(c, http.StatusOK, "birthday_form.html", title, gin.H{
		"Legend": legend,
		"Form":   form,
		"Errors": errs,
	})
}

func bindBirthdayForm(c *gin.Context) (BirthdayForm, FormErrors) {
	var form BirthdayForm
	errs := bindForm(c, &form)
	return form, errs
}
