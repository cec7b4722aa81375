package correction

import "context"

type CorrectionService interface {
	// Submit creates a pending correction against one of the authenticated
	// user's own attendance records
	Submit(ctx context.Context, req CreateCorrectionRequest) (CorrectionResponse, error)

	// MyCorrections lists the authenticated user's own corrections
	MyCorrections(ctx context.Context, limit, offset int) (ListResponse, error)

	// ListForReview lists corrections visible to the reviewer, filtered by
	// status (pending, approved, rejected or all; default pending)
	ListForReview(ctx context.Context, status string, limit, offset int) (ListResponse, error)

	// Approve transitions a pending correction to approved and rewrites the
	// attendance record in the same transaction
	Approve(ctx context.Context, id string, req ReviewRequest) (CorrectionResponse, error)

	// Reject transitions a pending correction to rejected
	Reject(ctx context.Context, id string, req ReviewRequest) (CorrectionResponse, error)
}
