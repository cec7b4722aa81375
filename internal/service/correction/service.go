package correction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/correction"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/validator"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/repository/postgresql"
)

type CorrectionServiceImpl struct {
	db *database.DB
	correction.CorrectionRepository
	attendance.RecordRepository
	user.UserRepository
	review  config.ReviewConfig
	nowFn   func() time.Time
	runInTx func(ctx context.Context, fn func(txCtx context.Context) error) error
}

func NewCorrectionService(
	db *database.DB,
	correctionRepo correction.CorrectionRepository,
	recordRepo attendance.RecordRepository,
	userRepo user.UserRepository,
	review config.ReviewConfig,
) *CorrectionServiceImpl {
	return &CorrectionServiceImpl{
		db:                   db,
		CorrectionRepository: correctionRepo,
		RecordRepository:     recordRepo,
		UserRepository:       userRepo,
		review:               review,
		nowFn:                time.Now,
		runInTx: func(ctx context.Context, fn func(txCtx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

func claimsFromContext(ctx context.Context) (jwtpkg.Claims, error) {
	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return jwtpkg.Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return jwtpkg.ClaimsFromMap(rawClaims)
}

// Submit implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Submit(ctx context.Context, req correction.CreateCorrectionRequest) (correction.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return correction.CorrectionResponse{}, err
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	record, err := s.RecordRepository.GetRecordByID(ctx, req.AttendanceID)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	if record.UserID != claims.UserID {
		return correction.CorrectionResponse{}, correction.ErrNotRecordOwner
	}

	login, logout := req.Times()

	created, err := s.CorrectionRepository.Create(ctx, correction.TimeCorrection{
		ID:                     uuid.NewString(),
		UserID:                 claims.UserID,
		UserRole:               claims.Role,
		AttendanceID:           record.ID,
		OriginalLoginTime:      record.LoginTime,
		OriginalLogoutTime:     record.LogoutTime,
		OriginalWorkDurationMs: record.WorkDurationMs,
		RequestedLoginTime:     login,
		RequestedLogoutTime:    logout,
		Reason:                 req.Reason,
		Status:                 correction.StatusPending,
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	return correction.ToResponse(created), nil
}

// MyCorrections implements correction.CorrectionService.
func (s *CorrectionServiceImpl) MyCorrections(ctx context.Context, limit, offset int) (correction.ListResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return correction.ListResponse{}, err
	}

	limit, offset = clampPage(limit, offset)

	corrections, total, err := s.CorrectionRepository.ListByUser(ctx, claims.UserID, limit, offset)
	if err != nil {
		return correction.ListResponse{}, err
	}

	return toListResponse(corrections, total, limit, offset), nil
}

// ListForReview implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListForReview(ctx context.Context, status string, limit, offset int) (correction.ListResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return correction.ListResponse{}, err
	}

	roles := visibleRoles(user.Role(claims.Role))
	if len(roles) == 0 {
		return correction.ListResponse{}, user.ErrReviewerAccessRequired
	}

	filter, err := statusFilter(status)
	if err != nil {
		return correction.ListResponse{}, err
	}

	limit, offset = clampPage(limit, offset)

	corrections, total, err := s.CorrectionRepository.ListByRoles(ctx, roles, filter, limit, offset)
	if err != nil {
		return correction.ListResponse{}, err
	}

	return toListResponse(corrections, total, limit, offset), nil
}

// statusFilter normalizes the listing filter. The default is the pending
// queue; "all" lifts the filter.
func statusFilter(status string) (correction.Status, error) {
	switch status {
	case "", string(correction.StatusPending):
		return correction.StatusPending, nil
	case string(correction.StatusApproved), string(correction.StatusRejected):
		return correction.Status(status), nil
	case "all":
		return "", nil
	default:
		return "", validator.ValidationErrors{{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected, all",
		}}
	}
}

// Approve implements correction.CorrectionService. The status transition and
// the attendance rewrite commit or roll back together.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, id string, req correction.ReviewRequest) (correction.CorrectionResponse, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	current, err := s.CorrectionRepository.GetByID(ctx, id)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	if err := s.checkReviewAccess(ctx, claims, current.UserID); err != nil {
		return correction.CorrectionResponse{}, err
	}

	var note *string
	if !validator.IsEmpty(req.Note) {
		note = &req.Note
	}

	now := s.nowFn().UTC()

	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.CorrectionRepository.Review(txCtx, id, correction.StatusApproved, claims.UserID, note, now); err != nil {
			return err
		}
		return s.applyToRecord(txCtx, current, now)
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	updated, err := s.CorrectionRepository.GetByID(ctx, id)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	return correction.ToResponse(updated), nil
}

// applyToRecord rewrites the attendance record with the requested times.
// The break total is kept; the worked duration is recomputed from the new
// window minus that break, floored at zero.
func (s *CorrectionServiceImpl) applyToRecord(ctx context.Context, c correction.TimeCorrection, appliedAt time.Time) error {
	record, err := s.RecordRepository.GetRecordByID(ctx, c.AttendanceID)
	if err != nil {
		return err
	}

	workMs := c.RequestedLogoutTime.Sub(c.RequestedLoginTime).Milliseconds() - record.BreakDurationMs
	if workMs < 0 {
		slog.Warn("clamping negative corrected duration to zero",
			"correction_id", c.ID,
			"attendance_id", c.AttendanceID,
		)
		workMs = 0
	}

	err = s.RecordRepository.ApplyCorrection(ctx, c.AttendanceID,
		c.RequestedLoginTime, c.RequestedLogoutTime, workMs, record.BreakDurationMs, appliedAt)
	if err != nil {
		return fmt.Errorf("failed to apply correction to attendance record: %w", err)
	}

	return nil
}

// Reject implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, id string, req correction.ReviewRequest) (correction.CorrectionResponse, error) {
	if s.review.RequireCorrectionRejectReason && validator.IsEmpty(req.Note) {
		return correction.CorrectionResponse{}, correction.ErrRejectReasonRequired
	}

	claims, err := claimsFromContext(ctx)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	current, err := s.CorrectionRepository.GetByID(ctx, id)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	if err := s.checkReviewAccess(ctx, claims, current.UserID); err != nil {
		return correction.CorrectionResponse{}, err
	}

	var note *string
	if !validator.IsEmpty(req.Note) {
		note = &req.Note
	}

	if err := s.CorrectionRepository.Review(ctx, id, correction.StatusRejected, claims.UserID, note, s.nowFn().UTC()); err != nil {
		return correction.CorrectionResponse{}, err
	}

	updated, err := s.CorrectionRepository.GetByID(ctx, id)
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	return correction.ToResponse(updated), nil
}

// ReapplyStuck finds corrections approved before now minus grace whose
// attendance record was never rewritten, usually because the process died
// between the two statements of an interrupted deployment, and applies them.
func (s *CorrectionServiceImpl) ReapplyStuck(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.nowFn().UTC().Add(-grace)

	stuck, err := s.CorrectionRepository.ListApprovedUnapplied(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list unapplied corrections: %w", err)
	}

	applied := 0
	for _, c := range stuck {
		err := s.runInTx(ctx, func(txCtx context.Context) error {
			return s.applyToRecord(txCtx, c, s.nowFn().UTC())
		})
		if err != nil {
			slog.Error("failed to reapply correction", "correction_id", c.ID, "error", err)
			continue
		}
		slog.Warn("reapplied stuck correction", "correction_id", c.ID, "attendance_id", c.AttendanceID)
		applied++
	}

	return applied, nil
}

func (s *CorrectionServiceImpl) checkReviewAccess(ctx context.Context, claims jwtpkg.Claims, submitterID string) error {
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

func toListResponse(corrections []correction.TimeCorrection, total, limit, offset int) correction.ListResponse {
	resp := correction.ListResponse{
		Corrections: make([]correction.CorrectionResponse, 0, len(corrections)),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}
	for _, c := range corrections {
		resp.Corrections = append(resp.Corrections, correction.ToResponse(c))
	}
	return resp
}
