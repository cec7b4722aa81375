package leave

import "context"

type LeaveService interface {
	// Submit creates a pending leave request for the authenticated user
	Submit(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)

	// MyRequests lists the authenticated user's own requests
	MyRequests(ctx context.Context, limit, offset int) (ListResponse, error)

	// ListForReview lists requests visible to the reviewer, filtered by
	// status (pending, approved, rejected or all; default pending)
	ListForReview(ctx context.Context, status string, limit, offset int) (ListResponse, error)

	// Approve transitions a pending request to approved
	Approve(ctx context.Context, id string, req ReviewRequest) (LeaveResponse, error)

	// Reject transitions a pending request to rejected
	Reject(ctx context.Context, id string, req ReviewRequest) (LeaveResponse, error)
}
