package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role names carried in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the application claims embedded in every token.
type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HMAC tokens. Tokens are issued by the identity provider;
// GenerateAccessToken exists for tooling and tests.
type JWTManager struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// NewJWTManager creates a new JWTManager.
func NewJWTManager(secret string, accessDuration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// GenerateAccessToken signs a short-lived access token.
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, email, role string) (string, error) {
	return m.sign(userID, email, role, tokenTypeAccess, m.accessDuration)
}

// GenerateRefreshToken signs a long-lived refresh token.
func (m *JWTManager) GenerateRefreshToken(userID uuid.UUID, email, role string) (string, error) {
	return m.sign(userID, email, role, tokenTypeRefresh, m.refreshDuration)
}

func (m *JWTManager) sign(userID uuid.UUID, email, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies an access token.
func (m *JWTManager) ValidateAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return m.secret, nil
	}, jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("invalid token: not an access token")
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token: missing user id")
	}
	return claims, nil
}
