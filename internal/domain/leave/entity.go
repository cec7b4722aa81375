package leave

import "time"

type LeaveType string

const (
	TypeVacation  LeaveType = "vacation"
	TypeSick      LeaveType = "sick"
	TypePersonal  LeaveType = "personal"
	TypeEmergency LeaveType = "emergency"
	TypeMaternity LeaveType = "maternity"
	TypePaternity LeaveType = "paternity"
)

var ValidTypes = []string{
	string(TypeVacation),
	string(TypeSick),
	string(TypePersonal),
	string(TypeEmergency),
	string(TypeMaternity),
	string(TypePaternity),
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// LeaveRequest carries the submitter's role as of submission time; reviewer
// visibility filters key off that snapshot, not the current role.
type LeaveRequest struct {
	ID         string
	UserID     string
	UserRole   string
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     Status
	ReviewerID *string
	ReviewNote *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Days counts calendar days in the requested range, both endpoints
// inclusive. Mar 1 through Mar 3 is 3 days; a single-day request is 1.
func (l LeaveRequest) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}
