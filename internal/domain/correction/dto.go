package correction

import (
	"time"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

type CreateCorrectionRequest struct {
	AttendanceID        string `json:"attendance_id"`
	RequestedLoginTime  string `json:"requested_login_time"`
	RequestedLogoutTime string `json:"requested_logout_time"`
	Reason              string `json:"reason"`

	parsedLogin  time.Time
	parsedLogout time.Time
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}

	login, loginOK := validator.IsValidDateTime(r.RequestedLoginTime)
	if !loginOK {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_login_time",
			Message: "requested_login_time must be a valid RFC3339 timestamp",
		})
	}

	logout, logoutOK := validator.IsValidDateTime(r.RequestedLogoutTime)
	if !logoutOK {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_logout_time",
			Message: "requested_logout_time must be a valid RFC3339 timestamp",
		})
	}

	if loginOK && logoutOK && !logout.After(login) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_logout_time",
			Message: "requested_logout_time must be after requested_login_time",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.parsedLogin = login
	r.parsedLogout = logout
	return nil
}

// Times returns the parsed timestamps. Only valid after Validate succeeded.
func (r *CreateCorrectionRequest) Times() (time.Time, time.Time) {
	return r.parsedLogin, r.parsedLogout
}

type ReviewRequest struct {
	Note string `json:"note"`
}

type CorrectionResponse struct {
	ID                   string  `json:"id"`
	UserID               string  `json:"user_id"`
	AttendanceID         string  `json:"attendance_id"`
	OriginalLoginTime    string  `json:"original_login_time"`
	OriginalLogoutTime   string  `json:"original_logout_time"`
	OriginalWorkDuration string  `json:"original_work_duration"`
	RequestedLoginTime   string  `json:"requested_login_time"`
	RequestedLogoutTime  string  `json:"requested_logout_time"`
	Reason               string  `json:"reason"`
	Status               string  `json:"status"`
	ReviewerID           *string `json:"reviewer_id,omitempty"`
	ReviewNote           *string `json:"review_note,omitempty"`
	ReviewedAt           *string `json:"reviewed_at,omitempty"`
	CreatedAt            string  `json:"created_at"`
}

type ListResponse struct {
	Corrections []CorrectionResponse `json:"corrections"`
	Total       int                  `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

func ToResponse(c TimeCorrection) CorrectionResponse {
	resp := CorrectionResponse{
		ID:                   c.ID,
		UserID:               c.UserID,
		AttendanceID:         c.AttendanceID,
		OriginalLoginTime:    c.OriginalLoginTime.Format(time.RFC3339),
		OriginalLogoutTime:   c.OriginalLogoutTime.Format(time.RFC3339),
		OriginalWorkDuration: attendance.FormatDuration(c.OriginalWorkDurationMs),
		RequestedLoginTime:   c.RequestedLoginTime.Format(time.RFC3339),
		RequestedLogoutTime:  c.RequestedLogoutTime.Format(time.RFC3339),
		Reason:               c.Reason,
		Status:               string(c.Status),
		ReviewerID:           c.ReviewerID,
		ReviewNote:           c.ReviewNote,
		CreatedAt:            c.CreatedAt.Format(time.RFC3339),
	}
	if c.ReviewedAt != nil {
		reviewed := c.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewed
	}
	return resp
}
