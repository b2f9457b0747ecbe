package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home renders the landing page.
func (h *Handler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", "", nil)
}

func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", "About", nil)
}
