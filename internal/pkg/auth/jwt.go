package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// ServiceRole is the role claim carried by backend service keys
const ServiceRole = "service_role"

// ServiceKeyClaims is the payload of a hosted-backend API key
type ServiceKeyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref"`
	jwt.RegisteredClaims
}

// ParseServiceKey decodes a service key without verifying its signature. The
// seeder never holds the project's signing secret; the claims are only used to
// tell which project and role the key belongs to.
func ParseServiceKey(token string) (*ServiceKeyClaims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return nil, ErrInvalidFormat
	}

	claims := &ServiceKeyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}
