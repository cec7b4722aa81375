package user

// VisibleRequestRoles returns the set of submitter roles whose leave and
// time-correction requests the given reviewer may see and decide.
//
// A manager reviews only employee requests. An admin reviews employee and
// manager requests but never another admin's. Employees review nothing.
func VisibleRequestRoles(reviewer Role) map[Role]bool {
	switch reviewer {
	case RoleManager:
		return map[Role]bool{RoleEmployee: true}
	case RoleAdmin:
		return map[Role]bool{RoleEmployee: true, RoleManager: true}
	default:
		return map[Role]bool{}
	}
}

// CanReview reports whether reviewer may decide a request submitted by the
// given role.
func CanReview(reviewer, submitter Role) bool {
	return VisibleRequestRoles(reviewer)[submitter]
}
