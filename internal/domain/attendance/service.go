package attendance

import "context"

type AttendanceService interface {
	// ClockIn opens a session for the authenticated user
	ClockIn(ctx context.Context) (ClockInResponse, error)

	// ClockOut closes the open session and writes a completed record
	ClockOut(ctx context.Context) (ClockOutResponse, error)

	// StartBreak begins a break on the open session
	StartBreak(ctx context.Context) (BreakResponse, error)

	// EndBreak ends the active break and accumulates its duration
	EndBreak(ctx context.Context) (BreakResponse, error)

	// Status reports the authenticated user's current session state
	Status(ctx context.Context) (StatusResponse, error)

	// History lists the authenticated user's completed records, optionally
	// bounded by an inclusive date range
	History(ctx context.Context, req HistoryRequest) (HistoryResponse, error)
}
