package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultImageFile is the profile picture shown until a user uploads one.
const DefaultImageFile = "default.jpg"

// User is an account holder. Username and Email are unique at the storage layer.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:20;not null;uniqueIndex"`
	Email        string    `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:60;not null" json:"-"`
	ImageFile    string    `gorm:"size:255;not null;default:'default.jpg'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate fills in the default profile picture.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ImageFile == "" {
		u.ImageFile = DefaultImageFile
	}
	return
}

// HasCustomImage reports whether the user uploaded their own picture.
func (u *User) HasCustomImage() bool {
	return u.ImageFile != "" && u.ImageFile != DefaultImageFile
}

// Record is a birthday entry. UserID is the owner; only the owner may edit or delete it.
type Record struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"column:birthday_name;size:100;not null"`
	Date      time.Time `gorm:"column:birthday_date;type:date;not null"`
	UserID    uint      `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether userID is the record's owner.
func (r *Record) OwnedBy(userID uint) bool {
	return r.UserID == userID
}
