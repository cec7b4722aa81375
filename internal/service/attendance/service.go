package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/database"
	jwtpkg "github.com/shiftlog-hq/shiftlog-backend-go/internal/pkg/jwt"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/repository/postgresql"
)

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.SessionRepository
	attendance.RecordRepository
	nowFn   func() time.Time
	runInTx func(ctx context.Context, fn func(txCtx context.Context) error) error
}

func NewAttendanceService(
	db *database.DB,
	sessionRepo attendance.SessionRepository,
	recordRepo attendance.RecordRepository,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:                db,
		SessionRepository: sessionRepo,
		RecordRepository:  recordRepo,
		nowFn:             time.Now,
		runInTx: func(ctx context.Context, fn func(txCtx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

func userIDFromContext(ctx context.Context) (string, error) {
	_, rawClaims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	claims, err := jwtpkg.ClaimsFromMap(rawClaims)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.ClockInResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	now := a.nowFn().UTC()

	err = a.SessionRepository.CreateSession(ctx, attendance.ActiveSession{
		UserID:    userID,
		LoginTime: now,
	})
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	return attendance.ClockInResponse{
		UserID:    userID,
		LoginTime: now.Format(time.RFC3339),
	}, nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.ClockOutResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	now := a.nowFn().UTC()

	record, notice, err := a.closeSession(ctx, userID, now, false)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	return attendance.ClockOutResponse{
		RecordID:      record.ID,
		UserID:        record.UserID,
		LoginTime:     record.LoginTime.Format(time.RFC3339),
		LogoutTime:    record.LogoutTime.Format(time.RFC3339),
		WorkDuration:  attendance.FormatDuration(record.WorkDurationMs),
		BreakDuration: attendance.FormatDuration(record.BreakDurationMs),
		Notice:        notice,
	}, nil
}

// closeSession converts the open session into a completed record and removes
// it, all inside one transaction. The row lock on the session serializes a
// clock-out racing the break endpoints or a second clock-out.
func (a *AttendanceServiceImpl) closeSession(ctx context.Context, userID string, logoutAt time.Time, autoClosed bool) (attendance.AttendanceRecord, string, error) {
	var record attendance.AttendanceRecord
	var notices []string

	err := a.runInTx(ctx, func(txCtx context.Context) error {
		session, err := a.SessionRepository.GetSessionForUpdate(txCtx, userID)
		if err != nil {
			return err
		}

		breakMs := session.BreakAccumMs
		if session.OnBreak && session.BreakStartTime != nil {
			// The sweep pins the logout to the end of the login day, which
			// can land before a break that opened after midnight. Such a
			// break contributes nothing.
			if delta := logoutAt.Sub(*session.BreakStartTime); delta > 0 {
				breakMs += delta.Milliseconds()
			}
			notices = append(notices, "an open break was closed at clock-out")
		}
		if breakMs < 0 {
			breakMs = 0
		}

		workMs := logoutAt.Sub(session.LoginTime).Milliseconds() - breakMs
		if workMs < 0 {
			slog.Warn("clamping negative worked duration to zero",
				"user_id", userID,
				"login_time", session.LoginTime,
				"logout_time", logoutAt,
				"break_ms", breakMs,
			)
			workMs = 0
			notices = append(notices, "worked duration was clamped to zero")
		}

		record, err = a.RecordRepository.CreateRecord(txCtx, attendance.AttendanceRecord{
			ID:              uuid.NewString(),
			UserID:          userID,
			LoginTime:       session.LoginTime,
			LogoutTime:      logoutAt,
			WorkDurationMs:  workMs,
			BreakDurationMs: breakMs,
			AutoClosed:      autoClosed,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}

		if err := a.SessionRepository.DeleteSession(txCtx, userID); err != nil {
			return fmt.Errorf("failed to delete active session: %w", err)
		}

		return nil
	})
	if err != nil {
		return attendance.AttendanceRecord{}, "", err
	}

	return record, strings.Join(notices, "; "), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context) (attendance.BreakResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	now := a.nowFn().UTC()

	if err := a.SessionRepository.StartBreak(ctx, userID, now); err != nil {
		return attendance.BreakResponse{}, err
	}

	return attendance.BreakResponse{
		UserID:  userID,
		OnBreak: true,
		At:      now.Format(time.RFC3339),
	}, nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.BreakResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	now := a.nowFn().UTC()

	if err := a.SessionRepository.EndBreak(ctx, userID, now); err != nil {
		return attendance.BreakResponse{}, err
	}

	return attendance.BreakResponse{
		UserID:  userID,
		OnBreak: false,
		At:      now.Format(time.RFC3339),
	}, nil
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context) (attendance.StatusResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	session, err := a.SessionRepository.GetSession(ctx, userID)
	if err != nil {
		if err == attendance.ErrNoActiveSession {
			return attendance.StatusResponse{ClockedIn: false}, nil
		}
		return attendance.StatusResponse{}, err
	}

	now := a.nowFn().UTC()

	breakMs := session.BreakAccumMs
	resp := attendance.StatusResponse{
		ClockedIn: true,
		LoginTime: session.LoginTime.Format(time.RFC3339),
		OnBreak:   session.OnBreak,
	}
	if session.OnBreak && session.BreakStartTime != nil {
		breakMs += now.Sub(*session.BreakStartTime).Milliseconds()
		resp.BreakStartTime = session.BreakStartTime.Format(time.RFC3339)
	}

	workMs := now.Sub(session.LoginTime).Milliseconds() - breakMs
	if workMs < 0 {
		workMs = 0
	}

	resp.WorkedSoFar = attendance.FormatDuration(workMs)
	resp.BreakSoFar = attendance.FormatDuration(breakMs)
	return resp, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, req attendance.HistoryRequest) (attendance.HistoryResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	start, end := req.Range()
	records, total, err := a.RecordRepository.ListRecordsByUser(ctx, userID, start, end, req.Limit, req.Offset)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}

	resp := attendance.HistoryResponse{
		Records: make([]attendance.RecordResponse, 0, len(records)),
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	for _, r := range records {
		resp.Records = append(resp.Records, attendance.ToRecordResponse(r))
	}

	return resp, nil
}

// CloseExpiredSessions closes every open session whose login day, in loc,
// ended before now. The logout time is pinned to 23:59:59 of the login day
// so a forgotten session never bleeds into the next day. Returns the number
// of sessions closed.
func (a *AttendanceServiceImpl) CloseExpiredSessions(ctx context.Context, now time.Time, loc *time.Location) (int, error) {
	sessions, err := a.SessionRepository.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active sessions: %w", err)
	}

	nowLocal := now.In(loc)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)

	closed := 0
	for _, session := range sessions {
		loginLocal := session.LoginTime.In(loc)
		dayEnd := time.Date(loginLocal.Year(), loginLocal.Month(), loginLocal.Day(), 23, 59, 59, 0, loc)
		if !dayEnd.Before(today) {
			continue
		}

		if _, _, err := a.closeSession(ctx, session.UserID, dayEnd.UTC(), true); err != nil {
			// A concurrent clock-out may have won. Log and keep sweeping.
			slog.Error("failed to auto-close session", "user_id", session.UserID, "error", err)
			continue
		}

		slog.Info("auto-closed attendance session", "user_id", session.UserID, "logout_time", dayEnd.UTC())
		closed++
	}

	return closed, nil
}
