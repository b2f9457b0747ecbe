package router

import (
	"fmt"
	"net/http"
	"time"

	"birthdaybook/internal/database"
	"birthdaybook/internal/filestorage"
	"birthdaybook/internal/handlers"
	phxmiddleware "birthdaybook/internal/middleware"
	"birthdaybook/internal/web"
	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configura e retorna uma instância do Gin Engine.
func SetupRouter(log *zap.Logger, deps handlers.Deps) (*gin.Engine, error) {
	tmpl, err := web.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	h := handlers.New(deps)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = 8 << 20

	// Middlewares globais
	router.Use(phxmiddleware.Metrics())
	router.Use(phxmiddleware.GinZap(log, time.RFC3339, true))
	router.Use(phxmiddleware.State(phxmiddleware.NewStateStore(config.Cfg.SecretKey, config.Cfg.CookieSecure)))
	router.Use(phxmiddleware.GinRecovery(log, h.Panic))
	router.Use(phxmiddleware.CSRF(config.Cfg.SecretKey, config.Cfg.CSRFEnabled))
	router.Use(phxmiddleware.LoadUser(deps.Users))

	// Endpoint para métricas Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthCheckHandler)

	router.StaticFS("/static", web.StaticFS())
	if local, ok := deps.Files.(*filestorage.LocalStorageProvider); ok {
		router.Static(filestorage.LocalURLPrefix, local.Dir())
	}

	router.NoRoute(h.NotFound)

	pages := router.Group("/")
	setupPublicRoutes(pages, h)
	setupAuthRoutes(pages, h)
	setupBirthdayRoutes(pages, h)

	return router, nil
}

func healthCheckHandler(c *gin.Context) {
	if err := database.Ping(); err != nil {
		phxlog.L.Error("Falha no ping do banco de dados durante o health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
	})
}

func setupPublicRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	r.GET("/", h.Home)
	r.GET("/home", h.Home)
	r.GET("/about", h.About)
}

func setupAuthRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	guest := r.Group("")
	guest.Use(phxmiddleware.RedirectIfAuthenticated())
	{
		guest.GET("/register", h.Register)
		guest.POST("/register", h.Register)
		guest.GET("/login", h.Login)
		guest.POST("/login", h.Login)
		guest.GET("/reset_password", h.ResetRequest)
		guest.POST("/reset_password", h.ResetRequest)
		guest.GET("/reset_password/:token", h.ResetToken)
		guest.POST("/reset_password/:token", h.ResetToken)
	}

	r.GET("/logout", h.Logout)

	account := r.Group("/account")
	account.Use(phxmiddleware.RequireLogin())
	{
		account.GET("", h.Account)
		account.POST("", h.Account)
	}
}

func setupBirthdayRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	protected := r.Group("")
	protected.Use(phxmiddleware.RequireLogin())
	{
		protected.GET("/birthdaylist", h.ListBirthdays)
		protected.GET("/birthdaylist/new", h.NewBirthday)
		protected.POST("/birthdaylist/new", h.NewBirthday)

		protected.GET("/record/:id/update", h.UpdateBirthday)
		protected.POST("/record/:id/update", h.UpdateBirthday)
		protected.GET("/record/:id/delete", h.DeleteBirthday)
		protected.POST("/record/:id/delete", h.DeleteBirthday)
	}
}
