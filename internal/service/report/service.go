package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/report"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	report.ReportRepository
}

func NewReportService(reportRepo report.ReportRepository) *ReportServiceImpl {
	return &ReportServiceImpl{ReportRepository: reportRepo}
}

func claimsFromContext(ctx context.Context) (jwtpkg.Claims, error) {
	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return jwtpkg.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return jwtpkg.ClaimsFromMap(rawClaims)
}

// parseRange converts the validated dates to a half-open UTC interval. The
// end date is pushed one day forward so records on the last day count.
func parseRange(req report.RangeRequest) (time.Time, time.Time, error) {
	if err := req.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)
	return start.UTC(), end.AddDate(0, 0, 1).UTC(), nil
}

// MySummary implements report.ReportService.
func (s *ReportServiceImpl) MySummary(ctx context.Context, req report.RangeRequest) (report.SummaryResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return report.SummaryResponse{}, err
	}

	start, end, err := parseRange(req)
	if err != nil {
		return report.SummaryResponse{}, err
	}

	summary, err := s.ReportRepository.UserSummary(ctx, claims.UserID, start, end)
	if err != nil {
		return report.SummaryResponse{}, err
	}

	return report.ToSummaryResponse(summary), nil
}

// TeamReport implements report.ReportService. Managers see employees, admins
// see employees and managers.
func (s *ReportServiceImpl) TeamReport(ctx context.Context, req report.RangeRequest) (report.TeamReportResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return report.TeamReportResponse{}, err
	}

	var roles []string
	for role := range user.VisibleRequestRoles(user.Role(claims.Role)) {
		roles = append(roles, string(role))
	}
	if len(roles) == 0 {
		return report.TeamReportResponse{}, user.ErrReviewerAccessRequired
	}

	start, end, err := parseRange(req)
	if err != nil {
		return report.TeamReportResponse{}, err
	}

	summaries, err := s.ReportRepository.TeamSummaries(ctx, roles, start, end)
	if err != nil {
		return report.TeamReportResponse{}, err
	}

	resp := report.TeamReportResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Summaries: make([]report.SummaryResponse, 0, len(summaries)),
	}
	for _, summary := range summaries {
		resp.Summaries = append(resp.Summaries, report.ToSummaryResponse(summary))
	}

	return resp, nil
}
