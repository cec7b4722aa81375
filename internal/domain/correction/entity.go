package correction

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// TimeCorrection asks to rewrite the login and logout times of a completed
// attendance record. The original times and worked duration are snapshotted
// at submission so reviewers see what the request would change even after it
// is applied. UserRole holds the submitter's role at submission; visibility
// filters key off it rather than the current role.
type TimeCorrection struct {
	ID                     string
	UserID                 string
	UserRole               string
	AttendanceID           string
	OriginalLoginTime      time.Time
	OriginalLogoutTime     time.Time
	OriginalWorkDurationMs int64
	RequestedLoginTime     time.Time
	RequestedLogoutTime    time.Time
	Reason                 string
	Status                 Status
	ReviewerID             *string
	ReviewNote             *string
	ReviewedAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
