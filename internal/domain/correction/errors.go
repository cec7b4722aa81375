package correction

import "errors"

var (
	ErrCorrectionNotFound   = errors.New("time correction not found")
	ErrAlreadyReviewed      = errors.New("time correction has already been reviewed")
	ErrNotRecordOwner       = errors.New("attendance record belongs to another user")
	ErrCorrectionPending    = errors.New("a pending correction already exists for this record")
	ErrRejectReasonRequired = errors.New("a rejection reason is required")
)
