package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/config"
	"github.com/shiftlog-hq/shiftlog-backend-go/internal/domain/leave"
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

type fakeLeaveRepo struct {
	mu       sync.Mutex
	requests map[string]leave.LeaveRequest
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[string]leave.LeaveRequest)}
}

func (f *fakeLeaveRepo) Create(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	f.requests[l.ID] = l
	return l, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return l, nil
}

func (f *fakeLeaveRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]leave.LeaveRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, l := range f.requests {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (f *fakeLeaveRepo) ListByRoles(ctx context.Context, roles []string, status leave.Status, limit, offset int) ([]leave.LeaveRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	var out []leave.LeaveRequest
	for _, l := range f.requests {
		if !roleSet[l.UserRole] {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func (f *fakeLeaveRepo) Review(ctx context.Context, id string, status leave.Status, reviewerID string, note *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.requests[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if l.Status != leave.StatusPending {
		return leave.ErrAlreadyReviewed
	}
	l.Status = status
	l.ReviewerID = &reviewerID
	l.ReviewNote = note
	l.ReviewedAt = &at
	f.requests[id] = l
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

func newTestService(review config.ReviewConfig) (*LeaveServiceImpl, *fakeLeaveRepo) {
	repo := newFakeLeaveRepo()
	users := &fakeUserRepo{users: map[string]user.User{
		"emp-1": {ID: "emp-1", Role: user.RoleEmployee},
		"emp-2": {ID: "emp-2", Role: user.RoleEmployee},
		"mgr-1": {ID: "mgr-1", Role: user.RoleManager},
		"mgr-2": {ID: "mgr-2", Role: user.RoleManager},
		"adm-1": {ID: "adm-1", Role: user.RoleAdmin},
	}}
	svc := NewLeaveService(repo, users, review)
	return svc, repo
}

func submit(t *testing.T, svc *LeaveServiceImpl, userID, role, start, end string) leave.LeaveResponse {
	t.Helper()
	resp, err := svc.Submit(authedContext(t, userID, role), leave.CreateLeaveRequest{
		Type:      "vacation",
		StartDate: start,
		EndDate:   end,
		Reason:    "family trip",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitCountsDaysInclusive(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, "pending", resp.Status)

	single := submit(t, svc, "emp-1", "employee", "2024-03-10", "2024-03-10")
	assert.Equal(t, 1, single.Days)
}

func TestSubmitRejectsReversedRange(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	_, err := svc.Submit(authedContext(t, "emp-1", "employee"), leave.CreateLeaveRequest{
		Type:      "vacation",
		StartDate: "2024-03-05",
		EndDate:   "2024-03-01",
		Reason:    "oops",
	})
	assert.Error(t, err)
}

func TestManagerApprovesEmployeeRequest(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")

	approved, err := svc.Approve(authedContext(t, "mgr-1", "manager"), resp.ID, leave.ReviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, "mgr-1", *approved.ReviewerID)
}

func TestManagerCannotReviewManager(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "mgr-2", "manager", "2024-03-01", "2024-03-03")

	_, err := svc.Approve(authedContext(t, "mgr-1", "manager"), resp.ID, leave.ReviewRequest{})
	assert.ErrorIs(t, err, user.ErrReviewerAccessRequired)

	// An admin can.
	_, err = svc.Approve(authedContext(t, "adm-1", "admin"), resp.ID, leave.ReviewRequest{})
	assert.NoError(t, err)
}

func TestSelfReviewRejected(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "mgr-1", "manager", "2024-03-01", "2024-03-03")

	_, err := svc.Approve(authedContext(t, "mgr-1", "manager"), resp.ID, leave.ReviewRequest{})
	assert.ErrorIs(t, err, user.ErrReviewerAccessRequired)
}

func TestEmployeeCannotReview(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")

	_, err := svc.Approve(authedContext(t, "emp-2", "employee"), resp.ID, leave.ReviewRequest{})
	assert.ErrorIs(t, err, user.ErrReviewerAccessRequired)
}

func TestReviewIsTerminal(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")
	ctx := authedContext(t, "mgr-1", "manager")

	_, err := svc.Approve(ctx, resp.ID, leave.ReviewRequest{})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, resp.ID, leave.ReviewRequest{Note: "changed my mind"})
	assert.ErrorIs(t, err, leave.ErrAlreadyReviewed)

	_, err = svc.Approve(ctx, resp.ID, leave.ReviewRequest{})
	assert.ErrorIs(t, err, leave.ErrAlreadyReviewed)
}

func TestRejectReasonRequiredWhenConfigured(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{RequireLeaveRejectReason: true})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")
	ctx := authedContext(t, "mgr-1", "manager")

	_, err := svc.Reject(ctx, resp.ID, leave.ReviewRequest{})
	assert.ErrorIs(t, err, leave.ErrRejectReasonRequired)

	rejected, err := svc.Reject(ctx, resp.ID, leave.ReviewRequest{Note: "short staffed"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.ReviewNote)
	assert.Equal(t, "short staffed", *rejected.ReviewNote)
}

func TestPendingVisibilityByRole(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")
	submit(t, svc, "mgr-2", "manager", "2024-03-01", "2024-03-03")

	// Manager sees only the employee request.
	mgrList, err := svc.ListForReview(authedContext(t, "mgr-1", "manager"), "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, mgrList.Total)

	// Admin sees both.
	admList, err := svc.ListForReview(authedContext(t, "adm-1", "admin"), "pending", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, admList.Total)

	// Employees see none.
	_, err = svc.ListForReview(authedContext(t, "emp-1", "employee"), "", 20, 0)
	assert.ErrorIs(t, err, user.ErrReviewerAccessRequired)
}

func TestVisibilityPinsSubmitterRole(t *testing.T) {
	repo := newFakeLeaveRepo()
	users := &fakeUserRepo{users: map[string]user.User{
		"emp-1": {ID: "emp-1", Role: user.RoleEmployee},
	}}
	svc := NewLeaveService(repo, users, config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")

	// Promoting the submitter afterwards must not hide the request from
	// managers: the role was snapshotted on the request at submission.
	users.users["emp-1"] = user.User{ID: "emp-1", Role: user.RoleManager}

	mgrList, err := svc.ListForReview(authedContext(t, "mgr-1", "manager"), "all", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 1, mgrList.Total)
	assert.Equal(t, resp.ID, mgrList.Requests[0].ID)
}

func TestListForReviewStatusFilter(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	first := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")
	submit(t, svc, "emp-2", "employee", "2024-03-05", "2024-03-06")

	_, err := svc.Approve(authedContext(t, "mgr-1", "manager"), first.ID, leave.ReviewRequest{})
	require.NoError(t, err)

	ctx := authedContext(t, "mgr-1", "manager")

	pending, err := svc.ListForReview(ctx, "pending", 20, 0)
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

func TestConcurrentReviewsSingleWinner(t *testing.T) {
	svc, _ := newTestService(config.ReviewConfig{})

	resp := submit(t, svc, "emp-1", "employee", "2024-03-01", "2024-03-03")

	ctxMgr := authedContext(t, "mgr-1", "manager")
	ctxAdm := authedContext(t, "adm-1", "admin")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, ctx := range []context.Context{ctxMgr, ctxAdm} {
		wg.Add(1)
		go func(i int, ctx context.Context) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, resp.ID, leave.ReviewRequest{})
		}(i, ctx)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, leave.ErrAlreadyReviewed)
		}
	}
	assert.Equal(t, 1, winners)
}
