package auth

import "context"

type RefreshTokenRepository interface {
	Store(ctx context.Context, t RefreshToken) error
	Get(ctx context.Context, token string) (RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
