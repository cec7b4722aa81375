package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/auth"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	auth.RefreshTokenRepository
	tokens *jwtpkg.Manager
}

func NewAuthService(
	userRepo user.UserRepository,
	refreshRepo auth.RefreshTokenRepository,
	tokens *jwtpkg.Manager,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		UserRepository:         userRepo,
		RefreshTokenRepository: refreshRepo,
		tokens:                 tokens,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, u)
}

// Refresh implements auth.AuthService. The presented token is revoked and a
// fresh pair issued, so a token can only be rotated once.
func (a *AuthServiceImpl) Refresh(ctx context.Context, req auth.RefreshRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	claims, err := a.tokens.VerifyToken(req.RefreshToken, jwtpkg.TokenTypeRefresh)
	if err != nil {
		switch {
		case errors.Is(err, jwtpkg.ErrTokenExpired):
			return auth.TokenResponse{}, auth.ErrTokenExpired
		default:
			return auth.TokenResponse{}, auth.ErrInvalidToken
		}
	}

	stored, err := a.RefreshTokenRepository.Get(ctx, req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	if stored.Revoked() {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	u, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	if err := a.RefreshTokenRepository.Revoke(ctx, req.RefreshToken); err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issueTokens(ctx, u)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.RefreshRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := a.RefreshTokenRepository.Revoke(ctx, req.RefreshToken); err != nil {
		// A second logout with the same token is a no-op.
		if errors.Is(err, auth.ErrRefreshTokenRevoked) {
			return nil
		}
		return err
	}

	return nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract claims from context: %w", err)
	}
	claims, err := jwtpkg.ClaimsFromMap(rawClaims)
	if err != nil {
		return err
	}

	u, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrWrongCurrentPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	if err := a.UserRepository.Update(ctx, u); err != nil {
		return err
	}

	// Outstanding sessions must log in again with the new password.
	return a.RefreshTokenRepository.RevokeAllForUser(ctx, u.ID)
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User) (auth.TokenResponse, error) {
	accessToken, expiresAt, err := a.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := a.tokens.GenerateRefreshToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = a.RefreshTokenRepository.Store(ctx, auth.RefreshToken{
		Token:     refreshToken,
		UserID:    u.ID,
		ExpiresAt: refreshExpiresAt,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.UTC().Format("2006-01-02 15:04:05"),
		User:         user.ToResponse(u),
	}, nil
}
