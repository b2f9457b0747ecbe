package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtKey []byte

const (
	issuer = "birthdaybook"

	audienceSession       = "session"
	audiencePasswordReset = "password-reset"
)

// InitializeJWT sets the HMAC key used for session and reset tokens.
func InitializeJWT(secret string) error {
	if secret == "" {
		return errors.New("SECRET_KEY not set")
	}
	jwtKey = []byte(secret)
	return nil
}

func registeredClaims(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func signToken(claims jwt.Claims) (string, error) {
	if len(jwtKey) == 0 {
		return "", errors.New("JWT secret key not initialized. Call InitializeJWT() first")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return tokenString, nil
}

// parseToken validates signature, algorithm, issuer, audience and expiry into claims.
func parseToken(tokenString string, claims jwt.Claims, audience string) error {
	if len(jwtKey) == 0 {
		return errors.New("JWT secret key not initialized")
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("error parsing token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
