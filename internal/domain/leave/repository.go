package leave

import (
	"context"
	"time"
)

// LeaveRepository manages leave requests. Approve and Reject are
// compare-and-swap updates guarded on status = pending, so exactly one of
// two concurrent reviews can win.
type LeaveRepository interface {
	Create(ctx context.Context, l LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]LeaveRequest, int, error)

	// ListByRoles returns requests whose submitter's role is in roles,
	// oldest first. A zero status means no status filter.
	ListByRoles(ctx context.Context, roles []string, status Status, limit, offset int) ([]LeaveRequest, int, error)

	// Review transitions the request from pending to the given terminal
	// status. Returns ErrAlreadyReviewed when the request is no longer
	// pending and ErrLeaveRequestNotFound when it does not exist.
	Review(ctx context.Context, id string, status Status, reviewerID string, note *string, at time.Time) error
}
