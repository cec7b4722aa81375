package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
)

// SessionSweeper closes open sessions left over from previous days.
type SessionSweeper interface {
	CloseExpiredSessions(ctx context.Context, now time.Time, loc *time.Location) (int, error)
}

// CorrectionReapplier applies approved corrections whose attendance rewrite
// never landed.
type CorrectionReapplier interface {
	ReapplyStuck(ctx context.Context, grace time.Duration) (int, error)
}

type AttendanceJobs struct {
	sweeper    SessionSweeper
	reapplier  CorrectionReapplier
	autoConfig config.AutoClockOutConfig
	review     config.ReviewConfig
	loc        *time.Location
}

func NewAttendanceJobs(
	sweeper SessionSweeper,
	reapplier CorrectionReapplier,
	autoConfig config.AutoClockOutConfig,
	review config.ReviewConfig,
) (*AttendanceJobs, error) {
	loc, err := time.LoadLocation(autoConfig.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid auto clock-out timezone %q: %w", autoConfig.Timezone, err)
	}

	return &AttendanceJobs{
		sweeper:    sweeper,
		reapplier:  reapplier,
		autoConfig: autoConfig,
		review:     review,
		loc:        loc,
	}, nil
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	if j.autoConfig.Enabled {
		scheduler.AddJob("auto_clockout_sweep", j.autoConfig.Interval, j.AutoClockOutSweep)
	}
	scheduler.AddJob("reapply_stuck_corrections", time.Minute, j.ReapplyStuckCorrections)
}

// AutoClockOutSweep closes sessions whose login day has ended. Running it on
// a short interval keeps the day boundary tight without a real cron daemon.
func (j *AttendanceJobs) AutoClockOutSweep(ctx context.Context) error {
	closed, err := j.sweeper.CloseExpiredSessions(ctx, time.Now().UTC(), j.loc)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: auto clock-out sweep finished", "sessions_closed", closed)
	}
	return nil
}

// ReapplyStuckCorrections finds approved corrections older than the grace
// window whose record rewrite is missing and applies them.
func (j *AttendanceJobs) ReapplyStuckCorrections(ctx context.Context) error {
	applied, err := j.reapplier.ReapplyStuck(ctx, j.review.StuckCorrectionGrace)
	if err != nil {
		return err
	}
	if applied > 0 {
		slog.Info("Cron: reapplied stuck corrections", "count", applied)
	}
	return nil
}
