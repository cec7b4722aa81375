package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/correction"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
)

type correctionRepositoryImpl struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepositoryImpl{db: db}
}

const correctionColumns = `id, user_id, user_role, attendance_id, original_login_time, original_logout_time,
	   original_work_duration_ms, requested_login_time, requested_logout_time, reason, status,
	   reviewer_id, review_note, reviewed_at, created_at, updated_at`

func scanCorrection(row pgx.Row) (correction.TimeCorrection, error) {
	var c correction.TimeCorrection
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.UserRole,
		&c.AttendanceID,
		&c.OriginalLoginTime,
		&c.OriginalLogoutTime,
		&c.OriginalWorkDurationMs,
		&c.RequestedLoginTime,
		&c.RequestedLogoutTime,
		&c.Reason,
		&c.Status,
		&c.ReviewerID,
		&c.ReviewNote,
		&c.ReviewedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// Create implements correction.CorrectionRepository. A partial unique index
// on (attendance_id) WHERE status = 'pending' keeps one pending correction
// per record.
func (r *correctionRepositoryImpl) Create(ctx context.Context, c correction.TimeCorrection) (correction.TimeCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_corrections (
			id, user_id, user_role, attendance_id, original_login_time, original_logout_time,
			original_work_duration_ms, requested_login_time, requested_logout_time, reason,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', NOW(), NOW())
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		c.ID,
		c.UserID,
		c.UserRole,
		c.AttendanceID,
		c.OriginalLoginTime,
		c.OriginalLogoutTime,
		c.OriginalWorkDurationMs,
		c.RequestedLoginTime,
		c.RequestedLogoutTime,
		c.Reason,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return correction.TimeCorrection{}, correction.ErrCorrectionPending
		}
		return correction.TimeCorrection{}, err
	}

	return created, nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) GetByID(ctx context.Context, id string) (correction.TimeCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + ` FROM time_corrections WHERE id = $1`

	c, err := scanCorrection(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return correction.TimeCorrection{}, correction.ErrCorrectionNotFound
		}
		return correction.TimeCorrection{}, err
	}

	return c, nil
}

// ListByUser implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) ListByUser(ctx context.Context, userID string, limit, offset int) ([]correction.TimeCorrection, int, error) {
	q := GetQuerier(ctx, r.db)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM time_corrections WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + correctionColumns + `
		FROM time_corrections
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var corrections []correction.TimeCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, err
		}
		corrections = append(corrections, c)
	}

	return corrections, total, rows.Err()
}

// ListByRoles implements correction.CorrectionRepository. Scoping uses the
// role snapshotted on the correction at submission, so promoting a user later
// does not move their old requests out of a manager's view. A zero status
// lists all.
func (r *correctionRepositoryImpl) ListByRoles(ctx context.Context, roles []string, status correction.Status, limit, offset int) ([]correction.TimeCorrection, int, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE user_role = ANY($1) AND ($2 = '' OR status = $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM time_corrections ` + where
	if err := q.QueryRow(ctx, countQuery, roles, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + correctionColumns + `
		FROM time_corrections
		` + where + `
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := q.Query(ctx, query, roles, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var corrections []correction.TimeCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, err
		}
		corrections = append(corrections, c)
	}

	return corrections, total, rows.Err()
}

// Review implements correction.CorrectionRepository. Same compare-and-swap
// shape as leave reviews: the pending guard decides the race.
func (r *correctionRepositoryImpl) Review(ctx context.Context, id string, status correction.Status, reviewerID string, note *string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_corrections
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
		return correction.ErrAlreadyReviewed
	}

	return nil
}

// ListApprovedUnapplied implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) ListApprovedUnapplied(ctx context.Context, cutoff time.Time) ([]correction.TimeCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + correctionColumns + `
		FROM time_corrections tc
		WHERE tc.status = 'approved'
		  AND tc.reviewed_at < $1
		  AND EXISTS (
			SELECT 1 FROM attendance_records ar
			WHERE ar.id = tc.attendance_id
			  AND (ar.correction_applied_at IS NULL OR ar.correction_applied_at < tc.reviewed_at)
		  )
		ORDER BY tc.reviewed_at ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corrections []correction.TimeCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		corrections = append(corrections, c)
	}

	return corrections, rows.Err()
}
