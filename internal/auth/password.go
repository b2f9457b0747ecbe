package auth

import (
	"birthdaybook/pkg/config"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password using the configured cost.
func HashPassword(password string) (string, error) {
	cost := config.Cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
