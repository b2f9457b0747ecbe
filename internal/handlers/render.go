package handlers

import (
	"net/http"

	"birthdaybook/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// render fills the data every page layout needs and writes the template.
// Flashes are popped here, before the body is written, so the state cookie
// can still be updated.
func (h *Handler) render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["CurrentUser"] = middleware.CurrentUser(c)
	data["Flashes"] = middleware.Flashes(c)
	data["CSRFToken"] = middleware.CSRFToken(c)
	data["CSRFField"] = middleware.CSRFFieldName
	c.HTML(status, name, data)
}

// NotFound renders the 404 page. It doubles as the router's NoRoute handler.
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", "Page Not Found", gin.H{
		"Heading": "Oops. Page Not Found (404)",
		"Message": "That page does not exist. Please try a different location",
	})
	c.Abort()
}

func (h *Handler) Forbidden(c *gin.Context) {
	h.render(c, http.StatusForbidden, "error.html", "Forbidden", gin.H{
		"Heading": "You don't have permission to do that (403)",
		"Message": "Please check your account and try again",
	})
	c.Abort()
}

// InternalError logs err and renders the 500 page.
func (h *Handler) InternalError(c *gin.Context, err error) {
	if err != nil {
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}
	h.render(c, http.StatusInternalServerError, "error.html", "Error", gin.H{
		"Heading": "Something went wrong (500)",
		"Message": "We're experiencing some trouble on our end. Please try again in the near future",
	})
	c.Abort()
}

// Panic is the recovery middleware's fallback page.
func (h *Handler) Panic(c *gin.Context) {
	h.InternalError(c, nil)
}

func (h *Handler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
