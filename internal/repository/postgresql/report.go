package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/report"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// summaryColumns aggregates attendance per user plus leave counts by status
// and approved leave days starting in the range. The leave subqueries run
// per grouped user row.
const summaryColumns = `
	SELECT u.id, u.name,
		   COUNT(ar.id),
		   COALESCE(SUM(ar.work_duration_ms), 0),
		   COALESCE(SUM(ar.break_duration_ms), 0),
		   COALESCE(AVG(ar.work_duration_ms), 0)::bigint,
		   COUNT(ar.id) FILTER (WHERE ar.auto_closed),
		   COUNT(ar.id) FILTER (WHERE ar.corrected),
		   (SELECT COUNT(*) FROM leave_requests lr
			 WHERE lr.user_id = u.id AND lr.status = 'pending'
			   AND lr.start_date >= $2 AND lr.start_date < $3),
		   (SELECT COUNT(*) FROM leave_requests lr
			 WHERE lr.user_id = u.id AND lr.status = 'approved'
			   AND lr.start_date >= $2 AND lr.start_date < $3),
		   (SELECT COUNT(*) FROM leave_requests lr
			 WHERE lr.user_id = u.id AND lr.status = 'rejected'
			   AND lr.start_date >= $2 AND lr.start_date < $3),
		   (SELECT COALESCE(SUM((lr.end_date::date - lr.start_date::date) + 1), 0)
			  FROM leave_requests lr
			 WHERE lr.user_id = u.id AND lr.status = 'approved'
			   AND lr.start_date >= $2 AND lr.start_date < $3)
	FROM users u
	LEFT JOIN attendance_records ar
	  ON ar.user_id = u.id AND ar.login_time >= $2 AND ar.login_time < $3
`

func scanSummary(row pgx.Row) (report.UserSummary, error) {
	var s report.UserSummary
	err := row.Scan(
		&s.UserID,
		&s.UserName,
		&s.Days,
		&s.TotalWorkMs,
		&s.TotalBreakMs,
		&s.AvgWorkMs,
		&s.AutoClosed,
		&s.CorrectedDays,
		&s.LeavePending,
		&s.LeaveApproved,
		&s.LeaveRejected,
		&s.LeaveDaysTaken,
	)
	return s, err
}

// UserSummary implements report.ReportRepository.
func (r *reportRepositoryImpl) UserSummary(ctx context.Context, userID string, start, end time.Time) (report.UserSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := summaryColumns + `
		WHERE u.id = $1
		GROUP BY u.id, u.name
	`

	s, err := scanSummary(q.QueryRow(ctx, query, userID, start, end))
	if err != nil {
		return report.UserSummary{}, err
	}

	return s, nil
}

// TeamSummaries implements report.ReportRepository.
func (r *reportRepositoryImpl) TeamSummaries(ctx context.Context, roles []string, start, end time.Time) ([]report.UserSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := summaryColumns + `
		WHERE u.role = ANY($1)
		GROUP BY u.id, u.name
		ORDER BY u.name ASC
	`

	rows, err := q.Query(ctx, query, roles, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []report.UserSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
