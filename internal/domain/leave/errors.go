package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrAlreadyReviewed      = errors.New("leave request has already been reviewed")
	ErrNotRequestOwner      = errors.New("leave request belongs to another user")
	ErrRejectReasonRequired = errors.New("a rejection reason is required")
)
