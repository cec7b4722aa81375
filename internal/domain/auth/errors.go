package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)
