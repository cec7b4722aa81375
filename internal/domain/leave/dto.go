package leave

import (
	"time"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`

	parsedStart time.Time
	parsedEnd   time.Time
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, ValidTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: vacation, sick, personal, emergency, maternity, paternity",
		})
	}

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

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.parsedStart = start
	r.parsedEnd = end
	return nil
}

// Dates returns the parsed range. Only valid after Validate succeeded.
func (r *CreateLeaveRequest) Dates() (time.Time, time.Time) {
	return r.parsedStart, r.parsedEnd
}

type ReviewRequest struct {
	Note string `json:"note"`
}

type LeaveResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Days       int     `json:"days"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	ReviewerID *string `json:"reviewer_id,omitempty"`
	ReviewNote *string `json:"review_note,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type ListResponse struct {
	Requests []LeaveResponse `json:"requests"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

func ToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Type:       string(l.Type),
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Days:       l.Days(),
		Reason:     l.Reason,
		Status:     string(l.Status),
		ReviewerID: l.ReviewerID,
		ReviewNote: l.ReviewNote,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.ReviewedAt != nil {
		reviewed := l.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewed
	}
	return resp
}
