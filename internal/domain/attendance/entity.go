package attendance

import (
	"fmt"
	"time"
)

// ActiveSession is the single open attendance session a user may hold.
// At most one row exists per user; the primary key on user_id enforces it.
type ActiveSession struct {
	UserID         string
	LoginTime      time.Time
	OnBreak        bool
	BreakStartTime *time.Time
	BreakAccumMs   int64
	CreatedAt      time.Time
}

// AttendanceRecord is a completed (clocked-out) session.
type AttendanceRecord struct {
	ID                  string
	UserID              string
	LoginTime           time.Time
	LogoutTime          time.Time
	WorkDurationMs      int64
	BreakDurationMs     int64
	AutoClosed          bool
	Corrected           bool
	CorrectionAppliedAt *time.Time
	CreatedAt           time.Time
}

// FormatDuration renders a millisecond duration as "2h 30m 15s".
// Negative inputs are treated as zero.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
