package user

import "testing"

func TestVisibleRequestRoles(t *testing.T) {
	cases := []struct {
		name     string
		reviewer Role
		want     []Role
	}{
		{"manager sees employees", RoleManager, []Role{RoleEmployee}},
		{"admin sees employees and managers", RoleAdmin, []Role{RoleEmployee, RoleManager}},
		{"employee sees nothing", RoleEmployee, nil},
		{"unknown role sees nothing", Role("guest"), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			visible := VisibleRequestRoles(tc.reviewer)
			if len(visible) != len(tc.want) {
				t.Fatalf("got %d visible roles, want %d", len(visible), len(tc.want))
			}
			for _, role := range tc.want {
				if !visible[role] {
					t.Errorf("expected role %q to be visible to %q", role, tc.reviewer)
				}
			}
		})
	}
}

func TestCanReview(t *testing.T) {
	cases := []struct {
		reviewer  Role
		submitter Role
		want      bool
	}{
		{RoleManager, RoleEmployee, true},
		{RoleManager, RoleManager, false},
		{RoleManager, RoleAdmin, false},
		{RoleAdmin, RoleEmployee, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleEmployee, RoleEmployee, false},
	}

	for _, tc := range cases {
		got := CanReview(tc.reviewer, tc.submitter)
		if got != tc.want {
			t.Errorf("CanReview(%q, %q) = %v, want %v", tc.reviewer, tc.submitter, got, tc.want)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []Role{RoleEmployee, RoleManager, RoleAdmin} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	if IsValidRole(Role("owner")) {
		t.Error(`IsValidRole("owner") = true, want false`)
	}
}
