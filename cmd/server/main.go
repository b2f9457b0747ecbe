package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/filestorage"
	"birthdaybook/internal/handlers"
	"birthdaybook/internal/notifications"
	"birthdaybook/internal/router"
	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func startServer() {
	log := phxlog.L.Named("server")

	if err := auth.InitializeJWT(config.Cfg.SecretKey); err != nil {
		log.Fatal("Failed to initialize JWT", zap.Error(err))
	}
	log.Info("JWT Initialized.")

	if err := database.ConnectDB(config.Cfg.DSN(), config.Cfg.Environment == "development"); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	notifications.InitEmailService()
	if err := filestorage.InitFileStorage(context.Background()); err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	if config.Cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.GetDB()
	engine, err := router.SetupRouter(phxlog.L, handlers.Deps{
		Users:    database.NewUserStore(db),
		Records:  database.NewRecordStore(db),
		Notifier: notifications.DefaultEmailNotifier,
		Files:    filestorage.DefaultFileStorageProvider,
	})
	if err != nil {
		log.Fatal("Failed to set up router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + config.Cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown em SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr), zap.String("environment", config.Cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	log.Info("Server stopped")
}

// runMigrations aplica as migrações e sai, sem subir o servidor.
func runMigrations() {
	log := phxlog.L.Named("migrate")
	if err := database.ConnectDB(config.Cfg.DSN(), config.Cfg.Environment == "development"); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateDB(); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
}

func main() {
	phxlog.Init(config.Cfg.LogLevel, config.Cfg.Environment, config.Cfg.LogFile)
	defer phxlog.Sync()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations()
		return
	}
	startServer()
}
