package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/leave"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveColumns = `id, user_id, user_role, type, start_date, end_date, reason, status,
	   reviewer_id, review_note, reviewed_at, created_at, updated_at`

func scanLeave(row pgx.Row) (leave.LeaveRequest, error) {
	var l leave.LeaveRequest
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.UserRole,
		&l.Type,
		&l.StartDate,
		&l.EndDate,
		&l.Reason,
		&l.Status,
		&l.ReviewerID,
		&l.ReviewNote,
		&l.ReviewedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

// Create implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Create(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (id, user_id, user_role, type, start_date, end_date, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW(), NOW())
		RETURNING ` + leaveColumns

	created, err := scanLeave(q.QueryRow(ctx, query,
		l.ID, l.UserID, l.UserRole, l.Type, l.StartDate, l.EndDate, l.Reason,
	))
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return created, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	l, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return l, nil
}

// ListByUser implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) ListByUser(ctx context.Context, userID string, limit, offset int) ([]leave.LeaveRequest, int, error) {
	q := GetQuerier(ctx, r.db)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, l)
	}

	return requests, total, rows.Err()
}

// ListByRoles implements leave.LeaveRepository. Scoping uses the role
// snapshotted on the request at submission, so promoting a user later does
// not move their old requests out of a manager's view. A zero status lists
// all.
func (r *leaveRepositoryImpl) ListByRoles(ctx context.Context, roles []string, status leave.Status, limit, offset int) ([]leave.LeaveRequest, int, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE user_role = ANY($1) AND ($2 = '' OR status = $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM leave_requests ` + where
	if err := q.QueryRow(ctx, countQuery, roles, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests
		` + where + `
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := q.Query(ctx, query, roles, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, l)
	}

	return requests, total, rows.Err()
}

// Review implements leave.LeaveRepository. The status guard in the WHERE
// clause is the compare-and-swap: of two concurrent reviews only one update
// matches the pending row.
func (r *leaveRepositoryImpl) Review(ctx context.Context, id string, status leave.Status, reviewerID string, note *string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, reviewer_id = $3, review_note = $4, reviewed_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, id, status, reviewerID, note, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return leave.ErrAlreadyReviewed
	}

	return nil
}
