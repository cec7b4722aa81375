package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/leave"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	leave.LeaveRepository
	user.UserRepository
	review config.ReviewConfig
	nowFn  func() time.Time
}

func NewLeaveService(leaveRepo leave.LeaveRepository, userRepo user.UserRepository, review config.ReviewConfig) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		LeaveRepository: leaveRepo,
		UserRepository:  userRepo,
		review:          review,
		nowFn:           time.Now,
	}
}

func claimsFromContext(ctx context.Context) (jwtpkg.Claims, error) {
	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return jwtpkg.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return jwtpkg.ClaimsFromMap(rawClaims)
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	start, end := req.Dates()

	created, err := s.LeaveRepository.Create(ctx, leave.LeaveRequest{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		UserRole:  claims.Role,
		Type:      leave.LeaveType(req.Type),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return leave.ToResponse(created), nil
}

// MyRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) MyRequests(ctx context.Context, limit, offset int) (leave.ListResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListResponse{}, err
	}

	limit, offset = clampPage(limit, offset)

	requests, total, err := s.LeaveRepository.ListByUser(ctx, claims.UserID, limit, offset)
	if err != nil {
		return leave.ListResponse{}, err
	}

	return toListResponse(requests, total, limit, offset), nil
}

// ListForReview implements leave.LeaveService. The reviewer only sees
// requests from roles below their own: managers review employees, admins
// review employees and managers.
func (s *LeaveServiceImpl) ListForReview(ctx context.Context, status string, limit, offset int) (leave.ListResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListResponse{}, err
	}

	roles := visibleRoles(user.Role(claims.Role))
	if len(roles) == 0 {
		return leave.ListResponse{}, user.ErrReviewerAccessRequired
	}

	filter, err := statusFilter(status)
	if err != nil {
		return leave.ListResponse{}, err
	}

	limit, offset = clampPage(limit, offset)

	requests, total, err := s.LeaveRepository.ListByRoles(ctx, roles, filter, limit, offset)
	if err != nil {
		return leave.ListResponse{}, err
	}

	return toListResponse(requests, total, limit, offset), nil
}

// statusFilter normalizes the listing filter. The default is the pending
// queue; "all" lifts the filter.
func statusFilter(status string) (leave.Status, error) {
	switch status {
	case "", string(leave.StatusPending):
		return leave.StatusPending, nil
	case string(leave.StatusApproved), string(leave.StatusRejected):
		return leave.Status(status), nil
	case "all":
		return "", nil
	default:
		return "", validator.ValidationErrors{{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, all",
		}}
	}
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string, req leave.ReviewRequest) (leave.LeaveResponse, error) {
	return s.reviewRequest(ctx, id, leave.StatusApproved, req)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, id string, req leave.ReviewRequest) (leave.LeaveResponse, error) {
	if s.review.RequireLeaveRejectReason && validator.IsEmpty(req.Note) {
		return leave.LeaveResponse{}, leave.ErrRejectReasonRequired
	}
	return s.reviewRequest(ctx, id, leave.StatusRejected, req)
}

func (s *LeaveServiceImpl) reviewRequest(ctx context.Context, id string, status leave.Status, req leave.ReviewRequest) (leave.LeaveResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	current, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	if err := s.checkReviewAccess(ctx, claims, current.UserID); err != nil {
		return leave.LeaveResponse{}, err
	}

	var note *string
	if !validator.IsEmpty(req.Note) {
		note = &req.Note
	}

	if err := s.LeaveRepository.Review(ctx, id, status, claims.UserID, note, s.nowFn().UTC()); err != nil {
		return leave.LeaveResponse{}, err
	}

	updated, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	return leave.ToResponse(updated), nil
}

// checkReviewAccess verifies the reviewer outranks the submitter. Managers
// review employees, admins review employees and managers. Self-review is
// never allowed.
func (s *LeaveServiceImpl) checkReviewAccess(ctx context.Context, claims jwtpkg.Claims, submitterID string) error {
	if claims.UserID == submitterID {
		return user.ErrReviewerAccessRequired
	}

	submitter, err := s.UserRepository.GetByID(ctx, submitterID)
	if err != nil {
		return err
	}

	if !user.CanReview(user.Role(claims.Role), submitter.Role) {
		return user.ErrReviewerAccessRequired
	}

	return nil
}

func visibleRoles(reviewer user.Role) []string {
	var roles []string
	for role := range user.VisibleRequestRoles(reviewer) {
		roles = append(roles, string(role))
	}
	return roles
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toListResponse(requests []leave.LeaveRequest, total, limit, offset int) leave.ListResponse {
	resp := leave.ListResponse{
		Requests: make([]leave.LeaveResponse, 0, len(requests)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for _, l := range requests {
		resp.Requests = append(resp.Requests, leave.ToResponse(l))
	}
	return resp
}
