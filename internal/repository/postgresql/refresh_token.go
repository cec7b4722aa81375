package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/auth"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
)

type refreshTokenRepositoryImpl struct {
	db *database.DB
}

func NewRefreshTokenRepository(db *database.DB) auth.RefreshTokenRepository {
	return &refreshTokenRepositoryImpl{db: db}
}

// Store implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) Store(ctx context.Context, t auth.RefreshToken) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked_at, created_at)
		VALUES ($1, $2, $3, NULL, NOW())
	`

	_, err := q.Exec(ctx, query, t.Token, t.UserID, t.ExpiresAt)
	return err
}

// Get implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) Get(ctx context.Context, token string) (auth.RefreshToken, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT token, user_id, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`

	var t auth.RefreshToken
	err := q.QueryRow(ctx, query, token).Scan(
		&t.Token,
		&t.UserID,
		&t.ExpiresAt,
		&t.RevokedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return auth.RefreshToken{}, auth.ErrRefreshTokenNotFound
		}
		return auth.RefreshToken{}, err
	}

	return t, nil
}

// Revoke implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) Revoke(ctx context.Context, token string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL
	`

	tag, err := q.Exec(ctx, query, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, token); err != nil {
			return err
		}
		return auth.ErrRefreshTokenRevoked
	}

	return nil
}

// RevokeAllForUser implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) RevokeAllForUser(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	_, err := q.Exec(ctx, query, userID)
	return err
}

// DeleteExpired implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) DeleteExpired(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
