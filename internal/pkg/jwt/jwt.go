package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type Claims struct {
	UserID string
	Email  string
	Role   string
	Type   TokenType
}

type Manager struct {
	auth       *jwtauth.JWTAuth
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		auth:       jwtauth.New("HS256", []byte(secret), nil),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Auth exposes the underlying JWTAuth for router middleware.
func (m *Manager) Auth() *jwtauth.JWTAuth {
	return m.auth
}

func (m *Manager) GenerateAccessToken(userID, email, role string) (string, time.Time, error) {
	return m.generate(userID, email, role, TokenTypeAccess, m.accessTTL)
}

func (m *Manager) GenerateRefreshToken(userID, email, role string) (string, time.Time, error) {
	return m.generate(userID, email, role, TokenTypeRefresh, m.refreshTTL)
}

func (m *Manager) generate(userID, email, role string, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	// The jti keeps two tokens issued in the same second distinct, so
	// rotating a refresh token always yields a new string.
	claims := map[string]interface{}{
		"jti":     uuid.NewString(),
		"user_id": userID,
		"email":   email,
		"role":    role,
		"type":    string(typ),
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	_, tokenString, err := m.auth.Encode(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encoding token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// VerifyToken decodes and validates a token string, enforcing the expected
// token type so a refresh token cannot be used as an access token.
func (m *Manager) VerifyToken(tokenString string, expectedType TokenType) (Claims, error) {
	token, err := m.auth.Decode(tokenString)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if err := jwt.Validate(token); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	typ, _ := claims["type"].(string)
	if TokenType(typ) != expectedType {
		return Claims{}, ErrInvalidTokenType
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   TokenType(typ),
	}, nil
}

// ClaimsFromMap extracts identity claims from a decoded claims map, as
// produced by jwtauth.FromContext inside authenticated handlers.
func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	typ, _ := claims["type"].(string)

	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   TokenType(typ),
	}, nil
}
