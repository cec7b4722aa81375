package correction

import (
	"context"
	"time"
)

// CorrectionRepository manages time correction requests. Review is a
// compare-and-swap update guarded on status = pending.
type CorrectionRepository interface {
	// Create inserts a pending correction. Returns ErrCorrectionPending if
	// the attendance record already has a pending correction.
	Create(ctx context.Context, c TimeCorrection) (TimeCorrection, error)

	GetByID(ctx context.Context, id string) (TimeCorrection, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]TimeCorrection, int, error)

	// ListByRoles returns corrections whose submitter's role is in roles,
	// oldest first. A zero status means no status filter.
	ListByRoles(ctx context.Context, roles []string, status Status, limit, offset int) ([]TimeCorrection, int, error)

	// Review transitions the correction from pending to the given terminal
	// status. Returns ErrAlreadyReviewed when the correction is no longer
	// pending and ErrCorrectionNotFound when it does not exist.
	Review(ctx context.Context, id string, status Status, reviewerID string, note *string, at time.Time) error

	// ListApprovedUnapplied returns corrections approved before the cutoff
	// whose attendance record still carries the original times. The
	// consistency sweep uses it to reapply interrupted approvals.
	ListApprovedUnapplied(ctx context.Context, cutoff time.Time) ([]TimeCorrection, error)
}
