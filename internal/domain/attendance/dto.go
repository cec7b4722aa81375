package attendance

import (
	"time"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

type ClockInResponse struct {
	UserID    string `json:"user_id"`
	LoginTime string `json:"login_time"`
}

type ClockOutResponse struct {
	RecordID      string `json:"record_id"`
	UserID        string `json:"user_id"`
	LoginTime     string `json:"login_time"`
	LogoutTime    string `json:"logout_time"`
	WorkDuration  string `json:"work_duration"`
	BreakDuration string `json:"break_duration"`
	Notice        string `json:"notice,omitempty"`
}

type BreakResponse struct {
	UserID  string `json:"user_id"`
	OnBreak bool   `json:"on_break"`
	At      string `json:"at"`
}

type StatusResponse struct {
	ClockedIn      bool   `json:"clocked_in"`
	LoginTime      string `json:"login_time,omitempty"`
	OnBreak        bool   `json:"on_break"`
	BreakStartTime string `json:"break_start_time,omitempty"`
	WorkedSoFar    string `json:"worked_so_far,omitempty"`
	BreakSoFar     string `json:"break_so_far,omitempty"`
}

type RecordResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	LoginTime     string `json:"login_time"`
	LogoutTime    string `json:"logout_time"`
	WorkDuration  string `json:"work_duration"`
	BreakDuration string `json:"break_duration"`
	AutoClosed    bool   `json:"auto_closed"`
	Corrected     bool   `json:"corrected"`
}

// HistoryRequest filters the record listing. Both dates are optional; when
// present they bound the login time inclusively by calendar day (UTC).
type HistoryRequest struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int

	parsedStart *time.Time
	parsedEnd   *time.Time
}

func (r *HistoryRequest) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var startOK, endOK bool

	if r.StartDate != "" {
		start, startOK = validator.IsValidDate(r.StartDate)
		if !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be a valid date in YYYY-MM-DD format",
			})
		}
	}

	if r.EndDate != "" {
		end, endOK = validator.IsValidDate(r.EndDate)
		if !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be a valid date in YYYY-MM-DD format",
			})
		}
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

	if startOK {
		s := start.UTC()
		r.parsedStart = &s
	}
	if endOK {
		// Half-open upper bound so the whole end day is included.
		e := end.AddDate(0, 0, 1).UTC()
		r.parsedEnd = &e
	}
	return nil
}

// Range returns the parsed half-open interval bounds, either of which may be
// nil. Only valid after Validate succeeded.
func (r *HistoryRequest) Range() (*time.Time, *time.Time) {
	return r.parsedStart, r.parsedEnd
}

type HistoryResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func ToRecordResponse(r AttendanceRecord) RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		LoginTime:     r.LoginTime.Format(time.RFC3339),
		LogoutTime:    r.LogoutTime.Format(time.RFC3339),
		WorkDuration:  FormatDuration(r.WorkDurationMs),
		BreakDuration: FormatDuration(r.BreakDurationMs),
		AutoClosed:    r.AutoClosed,
		Corrected:     r.Corrected,
	}
}
