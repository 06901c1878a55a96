package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the httpOnly cookie carrying the session token.
const CookieName = "token"

var (
	ErrTokenMissing   = errors.New("authentication token missing")
	ErrTokenMalformed = errors.New("authentication token malformed")
	ErrTokenExpired   = errors.New("authentication token expired")
)

type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(userID string, role models.UserRole) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse returns ErrTokenMissing, ErrTokenExpired or ErrTokenMalformed on failure.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
