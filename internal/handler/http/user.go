package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Profile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &UserHandlerImpl{userService: userService}
}

// Create implements UserHandler.
func (h *UserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var createReq user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.userService.Create(r.Context(), createReq)
	if err != nil {
		slog.Error("Create user service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User created", resp)
}

// Get implements UserHandler.
func (h *UserHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.userService.Get(r.Context(), id)
	if err != nil {
		slog.Error("Get user service error", "error", err, "user_id", id)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements UserHandler.
func (h *UserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.List(r.Context())
	if err != nil {
		slog.Error("List users service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements UserHandler.
func (h *UserHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var updateReq user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	updateReq.ID = chi.URLParam(r, "id")

	resp, err := h.userService.Update(r.Context(), updateReq)
	if err != nil {
		slog.Error("Update user service error", "error", err, "user_id", updateReq.ID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated", resp)
}

// Delete implements UserHandler.
func (h *UserHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.userService.Delete(r.Context(), id); err != nil {
		slog.Error("Delete user service error", "error", err, "user_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted", nil)
}

// Profile implements UserHandler.
func (h *UserHandlerImpl) Profile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.Profile(r.Context())
	if err != nil {
		slog.Error("Profile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// UpdateProfile implements UserHandler.
func (h *UserHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var updateReq user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.userService.UpdateProfile(r.Context(), updateReq)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated", resp)
}
