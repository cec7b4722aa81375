package report

import (
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

// UserSummary aggregates a user's completed attendance records and leave
// requests over a date range.
type UserSummary struct {
	UserID        string
	UserName      string
	Days          int
	TotalWorkMs   int64
	TotalBreakMs  int64
	AvgWorkMs     int64
	AutoClosed    int
	CorrectedDays int
	LeavePending  int
	LeaveApproved int
	LeaveRejected int
	// LeaveDaysTaken is the inclusive day count of approved leave starting
	// in the range.
	LeaveDaysTaken int
}

type RangeRequest struct {
	StartDate string
	EndDate   string
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SummaryResponse struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Days           int    `json:"days"`
	TotalWork      string `json:"total_work"`
	TotalBreak     string `json:"total_break"`
	AverageWork    string `json:"average_work"`
	AutoClosed     int    `json:"auto_closed"`
	CorrectedDays  int    `json:"corrected_days"`
	LeavePending   int    `json:"leave_pending"`
	LeaveApproved  int    `json:"leave_approved"`
	LeaveRejected  int    `json:"leave_rejected"`
	LeaveDaysTaken int    `json:"leave_days_taken"`
}

type TeamReportResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Summaries []SummaryResponse `json:"summaries"`
}

func ToSummaryResponse(s UserSummary) SummaryResponse {
	return SummaryResponse{
		UserID:         s.UserID,
		UserName:       s.UserName,
		Days:           s.Days,
		TotalWork:      attendance.FormatDuration(s.TotalWorkMs),
		TotalBreak:     attendance.FormatDuration(s.TotalBreakMs),
		AverageWork:    attendance.FormatDuration(s.AvgWorkMs),
		AutoClosed:     s.AutoClosed,
		CorrectedDays:  s.CorrectedDays,
		LeavePending:   s.LeavePending,
		LeaveApproved:  s.LeaveApproved,
		LeaveRejected:  s.LeaveRejected,
		LeaveDaysTaken: s.LeaveDaysTaken,
	}
}
