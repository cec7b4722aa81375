package auth

import "context"

type AuthService interface {
	// Login verifies credentials and issues an access and refresh token pair
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Refresh rotates a valid refresh token into a new token pair
	Refresh(ctx context.Context, req RefreshRequest) (TokenResponse, error)

	// Logout revokes the presented refresh token
	Logout(ctx context.Context, req RefreshRequest) error

	// ChangePassword verifies the current password, sets the new one and
	// revokes every outstanding refresh token
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}
