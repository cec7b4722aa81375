package report

import "context"

type ReportService interface {
	// MySummary aggregates the authenticated user's records in a date range
	MySummary(ctx context.Context, req RangeRequest) (SummaryResponse, error)

	// TeamReport aggregates records of every user the reviewer may see
	TeamReport(ctx context.Context, req RangeRequest) (TeamReportResponse, error)
}
