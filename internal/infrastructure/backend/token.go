package backend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

var errInvalidToken = errors.New("invalid token")

// mintAccessToken signs a short-lived HS256 access token carrying the user's
// identity claims.
func mintAccessToken(secret string, u *user, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"email":    u.Email,
		"fullName": u.FullName,
		"role":     string(u.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseAccessToken verifies signature and expiry and returns the embedded
// identity.
func parseAccessToken(secret, raw string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return domain.Identity{}, errInvalidToken
	}

	id, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	fullName, _ := claims["fullName"].(string)
	role, _ := claims["role"].(string)
	if id == "" || role == "" {
		return domain.Identity{}, errInvalidToken
	}

	return domain.Identity{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     domain.Role(role),
	}, nil
}
