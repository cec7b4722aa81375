package http

import (
	"log/slog"
	"net/http"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/report"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	MySummary(w http.ResponseWriter, r *http.Request)
	TeamReport(w http.ResponseWriter, r *http.Request)
}

type ReportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &ReportHandlerImpl{reportService: reportService}
}

func rangeFromQuery(r *http.Request) report.RangeRequest {
	return report.RangeRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
}

// MySummary implements ReportHandler.
func (h *ReportHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reportService.MySummary(r.Context(), rangeFromQuery(r))
	if err != nil {
		slog.Error("MySummary service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// TeamReport implements ReportHandler.
func (h *ReportHandlerImpl) TeamReport(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reportService.TeamReport(r.Context(), rangeFromQuery(r))
	if err != nil {
		slog.Error("TeamReport service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
