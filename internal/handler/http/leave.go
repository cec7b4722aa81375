package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/leave"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	MyRequests(w http.ResponseWriter, r *http.Request)
	ListForReview(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// Submit implements LeaveHandler.
func (h *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var createReq leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.Submit(r.Context(), createReq)
	if err != nil {
		slog.Error("Submit leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", resp)
}

// MyRequests implements LeaveHandler.
func (h *LeaveHandlerImpl) MyRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	resp, err := h.leaveService.MyRequests(r.Context(), limit, offset)
	if err != nil {
		slog.Error("MyRequests service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// ListForReview implements LeaveHandler.
func (h *LeaveHandlerImpl) ListForReview(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	status := r.URL.Query().Get("status")

	resp, err := h.leaveService.ListForReview(r.Context(), status, limit, offset)
	if err != nil {
		slog.Error("ListForReview leave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Approve implements LeaveHandler.
func (h *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.leaveService.Approve, "Leave request approved")
}

// Reject implements LeaveHandler.
func (h *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.leaveService.Reject, "Leave request rejected")
}

func (h *LeaveHandlerImpl) review(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id string, req leave.ReviewRequest) (leave.LeaveResponse, error),
	message string,
) {
	id := chi.URLParam(r, "id")

	var reviewReq leave.ReviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&reviewReq); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	resp, err := fn(r.Context(), id, reviewReq)
	if err != nil {
		slog.Error("Review leave service error", "error", err, "leave_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, resp)
}
