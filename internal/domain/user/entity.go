package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Regular employee
	RoleManager  Role = "manager"  // Can review employee requests
	RoleAdmin    Role = "admin"    // Full access, manages users
)

// ValidRoles lists every role a user can be created with.
var ValidRoles = []Role{RoleEmployee, RoleManager, RoleAdmin}

func IsValidRole(r Role) bool {
	for _, role := range ValidRoles {
		if role == r {
			return true
		}
	}
	return false
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReviewer checks if user can review leave and correction requests
func (u *User) IsReviewer() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
