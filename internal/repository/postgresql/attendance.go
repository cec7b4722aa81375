package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

// CreateSession implements attendance.SessionRepository. The primary key on
// user_id makes the insert the clock-in race arbiter: the second of two
// concurrent inserts fails with a unique violation.
func (r *sessionRepositoryImpl) CreateSession(ctx context.Context, s attendance.ActiveSession) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO active_sessions (user_id, login_time, on_break, break_start_time, break_accum_ms, created_at)
		VALUES ($1, $2, false, NULL, 0, NOW())
	`

	_, err := q.Exec(ctx, query, s.UserID, s.LoginTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.ErrAlreadyClockedIn
		}
		return err
	}

	return nil
}

// GetSession implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetSession(ctx context.Context, userID string) (attendance.ActiveSession, error) {
	return r.getSession(ctx, userID, false)
}

// GetSessionForUpdate implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetSessionForUpdate(ctx context.Context, userID string) (attendance.ActiveSession, error) {
	return r.getSession(ctx, userID, true)
}

func (r *sessionRepositoryImpl) getSession(ctx context.Context, userID string, forUpdate bool) (attendance.ActiveSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, login_time, on_break, break_start_time, break_accum_ms, created_at
		FROM active_sessions
		WHERE user_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s attendance.ActiveSession
	err := q.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.LoginTime,
		&s.OnBreak,
		&s.BreakStartTime,
		&s.BreakAccumMs,
		&s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ActiveSession{}, attendance.ErrNoActiveSession
		}
		return attendance.ActiveSession{}, err
	}

	return s, nil
}

// StartBreak implements attendance.SessionRepository. The on_break guard in
// the WHERE clause makes concurrent break starts race safe: only one update
// matches the row.
func (r *sessionRepositoryImpl) StartBreak(ctx context.Context, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE active_sessions
		SET on_break = true, break_start_time = $2
		WHERE user_id = $1 AND on_break = false
	`

	tag, err := q.Exec(ctx, query, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing session from an already active break.
		if _, err := r.GetSession(ctx, userID); err != nil {
			return err
		}
		return attendance.ErrBreakAlreadyActive
	}

	return nil
}

// EndBreak implements attendance.SessionRepository. The elapsed time is
// computed in SQL from break_start_time so two concurrent ends cannot both
// add to the accumulator.
func (r *sessionRepositoryImpl) EndBreak(ctx context.Context, userID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE active_sessions
		SET on_break = false,
			break_accum_ms = break_accum_ms + (EXTRACT(EPOCH FROM ($2::timestamptz - break_start_time)) * 1000)::bigint,
			break_start_time = NULL
		WHERE user_id = $1 AND on_break = true
	`

	tag, err := q.Exec(ctx, query, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetSession(ctx, userID); err != nil {
			return err
		}
		return attendance.ErrNoActiveBreak
	}

	return nil
}

// DeleteSession implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) DeleteSession(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM active_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoActiveSession
	}

	return nil
}

// ListSessions implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) ListSessions(ctx context.Context) ([]attendance.ActiveSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, login_time, on_break, break_start_time, break_accum_ms, created_at
		FROM active_sessions
		ORDER BY login_time ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []attendance.ActiveSession
	for rows.Next() {
		var s attendance.ActiveSession
		if err := rows.Scan(
			&s.UserID,
			&s.LoginTime,
			&s.OnBreak,
			&s.BreakStartTime,
			&s.BreakAccumMs,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

type recordRepositoryImpl struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepositoryImpl{db: db}
}

// CreateRecord implements attendance.RecordRepository.
func (r *recordRepositoryImpl) CreateRecord(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, user_id, login_time, logout_time, work_duration_ms, break_duration_ms,
			auto_closed, corrected, correction_applied_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NULL, NOW())
		RETURNING id, user_id, login_time, logout_time, work_duration_ms, break_duration_ms,
				  auto_closed, corrected, correction_applied_at, created_at
	`

	var created attendance.AttendanceRecord
	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.LoginTime,
		rec.LogoutTime,
		rec.WorkDurationMs,
		rec.BreakDurationMs,
		rec.AutoClosed,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.LoginTime,
		&created.LogoutTime,
		&created.WorkDurationMs,
		&created.BreakDurationMs,
		&created.AutoClosed,
		&created.Corrected,
		&created.CorrectionAppliedAt,
		&created.CreatedAt,
	)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	return created, nil
}

// GetRecordByID implements attendance.RecordRepository.
func (r *recordRepositoryImpl) GetRecordByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, login_time, logout_time, work_duration_ms, break_duration_ms,
			   auto_closed, corrected, correction_applied_at, created_at
		FROM attendance_records
		WHERE id = $1
	`

	var rec attendance.AttendanceRecord
	err := q.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.LoginTime,
		&rec.LogoutTime,
		&rec.WorkDurationMs,
		&rec.BreakDurationMs,
		&rec.AutoClosed,
		&rec.Corrected,
		&rec.CorrectionAppliedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, err
	}

	return rec, nil
}

// ListRecordsByUser implements attendance.RecordRepository.
func (r *recordRepositoryImpl) ListRecordsByUser(ctx context.Context, userID string, start, end *time.Time, limit, offset int) ([]attendance.AttendanceRecord, int, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if start != nil {
		args = append(args, *start)
		where += fmt.Sprintf(` AND login_time >= $%d`, len(args))
	}
	if end != nil {
		args = append(args, *end)
		where += fmt.Sprintf(` AND login_time < $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM attendance_records ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, login_time, logout_time, work_duration_ms, break_duration_ms,
			   auto_closed, corrected, correction_applied_at, created_at
		FROM attendance_records
		%s
		ORDER BY login_time DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		var rec attendance.AttendanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.LoginTime,
			&rec.LogoutTime,
			&rec.WorkDurationMs,
			&rec.BreakDurationMs,
			&rec.AutoClosed,
			&rec.Corrected,
			&rec.CorrectionAppliedAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// ApplyCorrection implements attendance.RecordRepository.
func (r *recordRepositoryImpl) ApplyCorrection(ctx context.Context, id string, loginTime, logoutTime time.Time, workMs, breakMs int64, appliedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records
		SET login_time = $2, logout_time = $3, work_duration_ms = $4, break_duration_ms = $5,
			corrected = true, correction_applied_at = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, loginTime, logoutTime, workMs, breakMs, appliedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}
