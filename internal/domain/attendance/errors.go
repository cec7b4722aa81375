package attendance

import "errors"

var (
	ErrAlreadyClockedIn   = errors.New("an active session already exists")
	ErrNoActiveSession    = errors.New("no active session found")
	ErrBreakAlreadyActive = errors.New("a break is already active")
	ErrNoActiveBreak      = errors.New("no active break found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
