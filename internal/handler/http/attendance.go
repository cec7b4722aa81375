package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// ClockIn implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.ClockIn(r.Context())
	if err != nil {
		slog.Error("ClockIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in", resp)
}

// ClockOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.ClockOut(r.Context())
	if err != nil {
		slog.Error("ClockOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out", resp)
}

// StartBreak implements AttendanceHandler.
func (h *AttendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.StartBreak(r.Context())
	if err != nil {
		slog.Error("StartBreak service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", resp)
}

// EndBreak implements AttendanceHandler.
func (h *AttendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.EndBreak(r.Context())
	if err != nil {
		slog.Error("EndBreak service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", resp)
}

// Status implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.Status(r.Context())
	if err != nil {
		slog.Error("Status service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// History implements AttendanceHandler.
func (h *AttendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	req := attendance.HistoryRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Limit:     limit,
		Offset:    offset,
	}

	resp, err := h.attendanceService.History(r.Context(), req)
	if err != nil {
		slog.Error("History service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
