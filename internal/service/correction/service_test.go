package correction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/attendance"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/correction"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

func authedContext(t *testing.T, userID, role string) context.Context {
	t.Helper()
	token, _, err := testAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   userID + "@example.com",
		"role":    role,
		"type":    "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeCorrectionRepo struct {
	mu          sync.Mutex
	corrections map[string]correction.TimeCorrection
}

func newFakeCorrectionRepo() *fakeCorrectionRepo {
	return &fakeCorrectionRepo{corrections: make(map[string]correction.TimeCorrection)}
}

func (f *fakeCorrectionRepo) Create(ctx context.Context, c correction.TimeCorrection) (correction.TimeCorrection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.corrections {
		if existing.AttendanceID == c.AttendanceID && existing.Status == correction.StatusPending {
			return correction.TimeCorrection{}, correction.ErrCorrectionPending
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.corrections[c.ID] = c
	return c, nil
}

func (f *fakeCorrectionRepo) GetByID(ctx context.Context, id string) (correction.TimeCorrection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.corrections[id]
	if !ok {
		return correction.TimeCorrection{}, correction.ErrCorrectionNotFound
	}
	return c, nil
}

func (f *fakeCorrectionRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]correction.TimeCorrection, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []correction.TimeCorrection
	for _, c := range f.corrections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeCorrectionRepo) ListByRoles(ctx context.Context, roles []string, status correction.Status, limit, offset int) ([]correction.TimeCorrection, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	var out []correction.TimeCorrection
	for _, c := range f.corrections {
		if !roleSet[c.UserRole] {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeCorrectionRepo) Review(ctx context.Context, id string, status correction.Status, reviewerID string, note *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.corrections[id]
	if !ok {
		return correction.ErrCorrectionNotFound
	}
	if c.Status != correction.StatusPending {
		return correction.ErrAlreadyReviewed
	}
	c.Status = status
	c.ReviewerID = &reviewerID
	c.ReviewNote = note
	c.ReviewedAt = &at
	f.corrections[id] = c
	return nil
}

func (f *fakeCorrectionRepo) ListApprovedUnapplied(ctx context.Context, cutoff time.Time) ([]correction.TimeCorrection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []correction.TimeCorrection
	for _, c := range f.corrections {
		if c.Status == correction.StatusApproved && c.ReviewedAt != nil && c.ReviewedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]attendance.AttendanceRecord
}

func (f *fakeRecordRepo) CreateRecord(ctx context.Context, r attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.ID] = r
	return r, nil
}

func (f *fakeRecordRepo) GetRecordByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) ListRecordsByUser(ctx context.Context, userID string, start, end *time.Time, limit, offset int) ([]attendance.AttendanceRecord, int, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) ApplyCorrection(ctx context.Context, id string, loginTime, logoutTime time.Time, workMs, breakMs int64, appliedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.LoginTime = loginTime
	r.LogoutTime = logoutTime
	r.WorkDurationMs = workMs
	r.BreakDurationMs = breakMs
	r.Corrected = true
	r.CorrectionAppliedAt = &appliedAt
	f.records[id] = r
	return nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) { return u, nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepo) List(ctx context.Context) ([]user.User, error) { return nil, nil }
func (f *fakeUserRepo) Update(ctx context.Context, u user.User) error { return nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error   { return nil }

func mustParse(t *testing.T, stamp string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
	return parsed
}

func newTestService(review config.ReviewConfig) (*CorrectionServiceImpl, *fakeCorrectionRepo, *fakeRecordRepo) {
	corrections := newFakeCorrectionRepo()
	records := &fakeRecordRepo{records: make(map[string]attendance.AttendanceRecord)}
	users := &fakeUserRepo{users: map[string]user.User{
		"emp-1": {ID: "emp-1", Role: user.RoleEmployee},
		"emp-2": {ID: "emp-2", Role: user.RoleEmployee},
		"mgr-1": {ID: "mgr-1", Role: user.RoleManager},
		"adm-1": {ID: "adm-1", Role: user.RoleAdmin},
	}}

	svc := &CorrectionServiceImpl{
		CorrectionRepository: corrections,
		RecordRepository:     records,
		UserRepository:       users,
		review:               review,
		nowFn:                time.Now,
		runInTx: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
	return svc, corrections, records
}

func seedRecord(t *testing.T, records *fakeRecordRepo, id, userID string) attendance.AttendanceRecord {
	t.Helper()
	rec := attendance.AttendanceRecord{
		ID:              id,
		UserID:          userID,
		LoginTime:       mustParse(t, "2024-03-04T09:30:00Z"),
		LogoutTime:      mustParse(t, "2024-03-04T17:30:00Z"),
		WorkDurationMs:  7 * time.Hour.Milliseconds(),
		BreakDurationMs: time.Hour.Milliseconds(),
	}
	_, err := records.CreateRecord(context.Background(), rec)
	require.NoError(t, err)
	return rec
}

func TestSubmitSnapshotsOriginalTimes(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")

	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "forgot to clock in on arrival",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2024-03-04T09:30:00Z", resp.OriginalLoginTime)
	assert.Equal(t, "2024-03-04T17:30:00Z", resp.OriginalLogoutTime)
	assert.Equal(t, "7h 0m 0s", resp.OriginalWorkDuration)
}

func TestSubmitRejectsForeignRecord(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-2")

	_, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "wrong times",
	})
	assert.ErrorIs(t, err, correction.ErrNotRecordOwner)
}

func TestSubmitRejectsSecondPending(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")
	ctx := authedContext(t, "emp-1", "employee")

	req := correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "wrong times",
	}

	_, err := svc.Submit(ctx, req)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, req)
	assert.ErrorIs(t, err, correction.ErrCorrectionPending)
}

func TestApproveRewritesRecord(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")

	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "forgot to clock in on arrival",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(authedContext(t, "mgr-1", "manager"), resp.ID, correction.ReviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	// 09:00 to 18:00 with the existing 1h break leaves 8h of work.
	rec, err := records.GetRecordByID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.True(t, rec.Corrected)
	assert.NotNil(t, rec.CorrectionAppliedAt)
	assert.Equal(t, mustParse(t, "2024-03-04T09:00:00Z"), rec.LoginTime)
	assert.Equal(t, mustParse(t, "2024-03-04T18:00:00Z"), rec.LogoutTime)
	assert.Equal(t, 8*time.Hour.Milliseconds(), rec.WorkDurationMs)
	assert.Equal(t, time.Hour.Milliseconds(), rec.BreakDurationMs)
}

func TestApproveClampsNegativeWork(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")

	// The requested half-hour window is smaller than the record's hour of
	// break, so the recomputed worked duration bottoms out at zero.
	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T09:30:00Z",
		Reason:              "left almost immediately",
	})
	require.NoError(t, err)

	_, err = svc.Approve(authedContext(t, "mgr-1", "manager"), resp.ID, correction.ReviewRequest{})
	require.NoError(t, err)

	rec, err := records.GetRecordByID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, rec.WorkDurationMs)
	assert.Equal(t, time.Hour.Milliseconds(), rec.BreakDurationMs)
}

func TestApproveIsTerminal(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{RequireCorrectionRejectReason: true})
	seedRecord(t, records, "rec-1", "emp-1")

	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "wrong times",
	})
	require.NoError(t, err)

	ctx := authedContext(t, "mgr-1", "manager")
	_, err = svc.Approve(ctx, resp.ID, correction.ReviewRequest{})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, resp.ID, correction.ReviewRequest{})
	assert.ErrorIs(t, err, correction.ErrAlreadyReviewed)

	_, err = svc.Reject(ctx, resp.ID, correction.ReviewRequest{Note: "no"})
	assert.ErrorIs(t, err, correction.ErrAlreadyReviewed)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{RequireCorrectionRejectReason: true})
	seedRecord(t, records, "rec-1", "emp-1")

	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "wrong times",
	})
	require.NoError(t, err)

	ctx := authedContext(t, "mgr-1", "manager")
	_, err = svc.Reject(ctx, resp.ID, correction.ReviewRequest{})
	assert.ErrorIs(t, err, correction.ErrRejectReasonRequired)

	rejected, err := svc.Reject(ctx, resp.ID, correction.ReviewRequest{Note: "times do not match the door logs"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	// Rejection leaves the record untouched.
	rec, err := records.GetRecordByID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.False(t, rec.Corrected)
}

func TestConcurrentApprovalsSingleWinner(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")

	resp, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
		AttendanceID:        "rec-1",
		RequestedLoginTime:  "2024-03-04T09:00:00Z",
		RequestedLogoutTime: "2024-03-04T18:00:00Z",
		Reason:              "wrong times",
	})
	require.NoError(t, err)

	ctxMgr := authedContext(t, "mgr-1", "manager")
	ctxAdm := authedContext(t, "adm-1", "admin")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, ctx := range []context.Context{ctxMgr, ctxAdm} {
		wg.Add(1)
		go func(i int, ctx context.Context) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, resp.ID, correction.ReviewRequest{})
		}(i, ctx)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, correction.ErrAlreadyReviewed)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestListForReviewStatusFilter(t *testing.T) {
	svc, _, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")
	seedRecord(t, records, "rec-2", "emp-1")

	for _, id := range []string{"rec-1", "rec-2"} {
		_, err := svc.Submit(authedContext(t, "emp-1", "employee"), correction.CreateCorrectionRequest{
			AttendanceID:        id,
			RequestedLoginTime:  "2024-03-04T09:00:00Z",
			RequestedLogoutTime: "2024-03-04T18:00:00Z",
			Reason:              "wrong times",
		})
		require.NoError(t, err)
	}

	ctx := authedContext(t, "mgr-1", "manager")

	pending, err := svc.ListForReview(ctx, "pending", 20, 0)
	require.NoError(t, err)
	require.Len(t, pending.Corrections, 2)

	_, err = svc.Approve(ctx, pending.Corrections[0].ID, correction.ReviewRequest{})
	require.NoError(t, err)

	pending, err = svc.ListForReview(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)

	approved, err := svc.ListForReview(ctx, "approved", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, approved.Total)

	all, err := svc.ListForReview(ctx, "all", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	_, err = svc.ListForReview(ctx, "bogus", 20, 0)
	assert.Error(t, err)
}

func TestReapplyStuck(t *testing.T) {
	svc, corrections, records := newTestService(config.ReviewConfig{})
	seedRecord(t, records, "rec-1", "emp-1")

	// An approved correction whose record rewrite never happened.
	reviewer := "mgr-1"
	reviewedAt := time.Now().UTC().Add(-10 * time.Minute)
	_, err := corrections.Create(context.Background(), correction.TimeCorrection{
		ID:                  "cor-1",
		UserID:              "emp-1",
		AttendanceID:        "rec-1",
		RequestedLoginTime:  mustParse(t, "2024-03-04T09:00:00Z"),
		RequestedLogoutTime: mustParse(t, "2024-03-04T18:00:00Z"),
		Status:              correction.StatusPending,
	})
	require.NoError(t, err)
	require.NoError(t, corrections.Review(context.Background(), "cor-1", correction.StatusApproved, reviewer, nil, reviewedAt))

	applied, err := svc.ReapplyStuck(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	rec, err := records.GetRecordByID(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.True(t, rec.Corrected)
	assert.Equal(t, 8*time.Hour.Milliseconds(), rec.WorkDurationMs)
}
