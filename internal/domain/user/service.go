package user

import "context"

type UserService interface {
	// Create registers a new user (admin only)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)

	// Get returns one user by id (admin only)
	Get(ctx context.Context, id string) (UserResponse, error)

	// List returns all users (admin only)
	List(ctx context.Context) ([]UserResponse, error)

	// Update changes a user's name, role or password (admin only)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)

	// Delete removes a user (admin only)
	Delete(ctx context.Context, id string) error

	// Profile returns the authenticated user
	Profile(ctx context.Context) (UserResponse, error)

	// UpdateProfile changes the authenticated user's name and email
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)
}
