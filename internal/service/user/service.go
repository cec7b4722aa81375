package user

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
}

func NewUserService(userRepo user.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{UserRepository: userRepo}
}

func claimsFromContext(ctx context.Context) (jwtpkg.Claims, error) {
	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return jwtpkg.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return jwtpkg.ClaimsFromMap(rawClaims)
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         user.Role(req.Role),
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(created), nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToResponse(u))
	}
	return responses, nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.UserRepository.Update(ctx, u); err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(u), nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	// An admin removing their own account would lock the tenant out.
	if claims.UserID == id {
		return user.ErrAdminAccessRequired
	}

	return s.UserRepository.Delete(ctx, id)
}

// Profile implements user.UserService.
func (s *UserServiceImpl) Profile(ctx context.Context) (user.UserResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(u), nil
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}

	u.Name = req.Name
	u.Email = req.Email

	if err := s.UserRepository.Update(ctx, u); err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(u), nil
}
