package auth

import "time"

// RefreshToken is a stored refresh token. Logout revokes it so a stolen
// token cannot mint new access tokens after the session ends.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (t RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}
