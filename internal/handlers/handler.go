package handlers

import (
	"context"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/filestorage"
	"birthdaybook/internal/models"
	"birthdaybook/internal/notifications"
	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"go.uber.org/zap"
)

// UserRepository is the credential store used by the handlers.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// RecordRepository is the birthday record store used by the handlers.
type RecordRepository interface {
	Create(ctx context.Context, r *models.Record) error
	FindByID(ctx context.Context, id uint) (*models.Record, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Record, error)
	Update(ctx context.Context, r *models.Record) error
	Delete(ctx context.Context, id, userID uint) error
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Users    UserRepository
	Records  RecordRepository
	Notifier notifications.EmailNotifier
	Files    filestorage.FileStorageProvider
}

// Handler serves the HTML pages.
type Handler struct {
	users       UserRepository
	records     RecordRepository
	notifier    notifications.EmailNotifier
	files       filestorage.FileStorageProvider
	resetTokens *auth.ResetTokenService
	log         *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		users:       d.Users,
		records:     d.Records,
		notifier:    d.Notifier,
		files:       d.Files,
		resetTokens: auth.NewResetTokenService(d.Users, config.Cfg.ResetTokenTTL),
		log:         phxlog.L.Named("handlers"),
	}
}
