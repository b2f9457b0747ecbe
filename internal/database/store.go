package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"birthdaybook/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// translateError maps driver and gorm errors onto the model sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &models.DuplicateKeyError{Field: fieldFromConstraint(pgErr.ConstraintName)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &models.DuplicateKeyError{}
	}
	return err
}

// fieldFromConstraint extracts the column from index names like idx_users_email.
func fieldFromConstraint(name string) string {
	switch {
	case strings.HasSuffix(name, "_username"):
		return "username"
	case strings.HasSuffix(name, "_email"):
		return "email"
	}
	return ""
}

// UserStore persists accounts.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts u and fills its ID. A taken username or email yields a *models.DuplicateKeyError.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translateError(s.db.WithContext(ctx).Create(u).Error)
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// UsernameTaken reports whether another account (id != exceptID) uses username.
// Pass 0 as exceptID when checking a new registration.
func (s *UserStore) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return s.taken(ctx, "username", username, exceptID)
}

// EmailTaken is UsernameTaken for the email column.
func (s *UserStore) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return s.taken(ctx, "email", email, exceptID)
}

func (s *UserStore) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// UpdateProfile saves username, email and image file of an existing user.
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"username":   u.Username,
		"email":      u.Email,
		"image_file": u.ImageFile,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash, which also invalidates outstanding reset tokens.
func (s *UserStore) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordStore persists birthday records.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Create(ctx context.Context, r *models.Record) error {
	return translateError(s.db.WithContext(ctx).Create(r).Error)
}

func (s *RecordStore) FindByID(ctx context.Context, id uint) (*models.Record, error) {
	var record models.Record
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// ListByUser returns the owner's records by date, then by insertion order.
func (s *RecordStore) ListByUser(ctx context.Context, userID uint) ([]models.Record, error) {
	var records []models.Record
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("birthday_date ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, translateError(err)
	}
	return records, nil
}

// Update saves name and date. The owner is part of the filter, so a record
// that changed hands (or vanished) since it was loaded is reported as not found.
func (s *RecordStore) Update(ctx context.Context, r *models.Record) error {
	result := s.db.WithContext(ctx).Model(&models.Record{}).
		Where("id = ? AND user_id = ?", r.ID, r.UserID).
		Updates(map[string]interface{}{
			"birthday_name": r.Name,
			"birthday_date": r.Date,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the record id if userID owns it.
func (s *RecordStore) Delete(ctx context.Context, id, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Record{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
