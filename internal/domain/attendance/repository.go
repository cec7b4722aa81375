package attendance

import (
	"context"
	"time"
)

// SessionRepository manages the open-session table. Implementations must
// guarantee at most one session per user and make the break transitions
// single-statement guarded updates so concurrent calls cannot double-count.
type SessionRepository interface {
	// CreateSession inserts a new open session. Returns ErrAlreadyClockedIn
	// if the user already has one.
	CreateSession(ctx context.Context, s ActiveSession) error

	// GetSession returns the user's open session or ErrNoActiveSession.
	GetSession(ctx context.Context, userID string) (ActiveSession, error)

	// GetSessionForUpdate locks the user's open session row for the
	// duration of the surrounding transaction.
	GetSessionForUpdate(ctx context.Context, userID string) (ActiveSession, error)

	// StartBreak marks the session as on break, guarded on on_break being
	// false. Returns ErrBreakAlreadyActive when the guard fails and
	// ErrNoActiveSession when no session exists.
	StartBreak(ctx context.Context, userID string, at time.Time) error

	// EndBreak clears the break flag and adds the elapsed time to the
	// accumulated break total, guarded on on_break being true. Returns
	// ErrNoActiveBreak when the guard fails and ErrNoActiveSession when no
	// session exists.
	EndBreak(ctx context.Context, userID string, at time.Time) error

	// DeleteSession removes the user's open session.
	DeleteSession(ctx context.Context, userID string) error

	// ListSessions returns every open session, oldest login first. Used by
	// the end-of-day sweep.
	ListSessions(ctx context.Context) ([]ActiveSession, error)
}

// RecordRepository manages completed attendance records.
type RecordRepository interface {
	CreateRecord(ctx context.Context, r AttendanceRecord) (AttendanceRecord, error)
	GetRecordByID(ctx context.Context, id string) (AttendanceRecord, error)
	// ListRecordsByUser pages a user's records, newest login first, bounded
	// by the optional half-open [start, end) interval on login_time.
	ListRecordsByUser(ctx context.Context, userID string, start, end *time.Time, limit, offset int) ([]AttendanceRecord, int, error)

	// ApplyCorrection overwrites a record's times and durations and marks
	// it corrected. The caller runs it inside the approval transaction.
	ApplyCorrection(ctx context.Context, id string, loginTime, logoutTime time.Time, workMs, breakMs int64, appliedAt time.Time) error
}
