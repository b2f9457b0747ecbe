package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"birthdaybook/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// UserFinder loads users by primary key.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// ResetClaims carry the target user (sub) and a fingerprint of the password
// hash at issue time, so a token dies with the password it was meant to replace.
type ResetClaims struct {
	Fingerprint string `json:"pwf"`
	jwt.RegisteredClaims
}

// ResetTokenService issues and verifies stateless password reset tokens.
type ResetTokenService struct {
	users UserFinder
	ttl   time.Duration
}

func NewResetTokenService(users UserFinder, ttl time.Duration) *ResetTokenService {
	return &ResetTokenService{users: users, ttl: ttl}
}

// Issue returns a signed token for user that expires after the service TTL.
func (s *ResetTokenService) Issue(user *models.User) (string, error) {
	claims := &ResetClaims{
		Fingerprint:      passwordFingerprint(user.PasswordHash),
		RegisteredClaims: registeredClaims(strconv.FormatUint(uint64(user.ID), 10), audiencePasswordReset, s.ttl),
	}
	return signToken(claims)
}

// Verify returns the token's user. Any failure (bad signature, malformed,
// expired, unknown user, password already changed) is models.ErrInvalidToken.
// Store errors other than not-found are returned as is.
func (s *ResetTokenService) Verify(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &ResetClaims{}
	if err := parseToken(tokenString, claims, audiencePasswordReset); err != nil {
		return nil, models.ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, models.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(passwordFingerprint(user.PasswordHash))) != 1 {
		return nil, models.ErrInvalidToken
	}
	return user, nil
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
