package report

import (
	"context"
	"time"
)

// ReportRepository aggregates completed attendance records in the database
// rather than loading rows into the service.
type ReportRepository interface {
	// UserSummary aggregates one user's records whose login time falls in
	// [start, end).
	UserSummary(ctx context.Context, userID string, start, end time.Time) (UserSummary, error)

	// TeamSummaries aggregates records for every user whose role is in
	// roles, ordered by user name.
	TeamSummaries(ctx context.Context, roles []string, start, end time.Time) ([]UserSummary, error)
}
