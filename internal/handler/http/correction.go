package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/correction"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/response"
)

type CorrectionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	MyCorrections(w http.ResponseWriter, r *http.Request)
	ListForReview(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type CorrectionHandlerImpl struct {
	correctionService correction.CorrectionService
}

func NewCorrectionHandler(correctionService correction.CorrectionService) CorrectionHandler {
	return &CorrectionHandlerImpl{correctionService: correctionService}
}

// Submit implements CorrectionHandler.
func (h *CorrectionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var createReq correction.CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.correctionService.Submit(r.Context(), createReq)
	if err != nil {
		slog.Error("Submit correction service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time correction submitted", resp)
}

// MyCorrections implements CorrectionHandler.
func (h *CorrectionHandlerImpl) MyCorrections(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	resp, err := h.correctionService.MyCorrections(r.Context(), limit, offset)
	if err != nil {
		slog.Error("MyCorrections service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// ListForReview implements CorrectionHandler.
func (h *CorrectionHandlerImpl) ListForReview(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	status := r.URL.Query().Get("status")

	resp, err := h.correctionService.ListForReview(r.Context(), status, limit, offset)
	if err != nil {
		slog.Error("ListForReview correction service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Approve implements CorrectionHandler.
func (h *CorrectionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Approve, "Time correction approved")
}

// Reject implements CorrectionHandler.
func (h *CorrectionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Reject, "Time correction rejected")
}

func (h *CorrectionHandlerImpl) review(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id string, req correction.ReviewRequest) (correction.CorrectionResponse, error),
	message string,
) {
	id := chi.URLParam(r, "id")

	var reviewReq correction.ReviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&reviewReq); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	resp, err := fn(r.Context(), id, reviewReq)
	if err != nil {
		slog.Error("Review correction service error", "error", err, "correction_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, resp)
}
