package response

import (
	"errors"
	"net/http"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/auth"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/correction"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/leave"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenNotFound):
		Unauthorized(w, "Unknown refresh token")
	case errors.Is(err, auth.ErrWrongCurrentPassword):
		BadRequest(w, "Current password is incorrect", nil)

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, user.ErrReviewerAccessRequired):
		Forbidden(w, "Manager or admin access required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "An active session already exists")
	case errors.Is(err, attendance.ErrNoActiveSession):
		Conflict(w, "No active session found")
	case errors.Is(err, attendance.ErrBreakAlreadyActive):
		Conflict(w, "A break is already active")
	case errors.Is(err, attendance.ErrNoActiveBreak):
		Conflict(w, "No active break found")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrAlreadyReviewed):
		Conflict(w, "Leave request already reviewed")
	case errors.Is(err, leave.ErrRejectReasonRequired):
		BadRequest(w, "A rejection reason is required", nil)

	// Correction domain errors
	case errors.Is(err, correction.ErrCorrectionNotFound):
		NotFound(w, "Time correction not found")
	case errors.Is(err, correction.ErrAlreadyReviewed):
		Conflict(w, "Time correction already reviewed")
	case errors.Is(err, correction.ErrCorrectionPending):
		Conflict(w, "A pending correction already exists for this record")
	case errors.Is(err, correction.ErrNotRecordOwner):
		Forbidden(w, "Attendance record belongs to another user")
	case errors.Is(err, correction.ErrRejectReasonRequired):
		BadRequest(w, "A rejection reason is required", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
