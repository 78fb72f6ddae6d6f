package users_enums

// UserRole is instance-wide. Per-project permissions live in ProjectRole.
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleMember UserRole = "MEMBER"
)

// IsInstanceAdmin reports whether the role bypasses project membership checks.
func (r UserRole) IsInstanceAdmin() bool {
	return r == UserRoleAdmin
}

type UserStatus string

const (
	UserStatusActive UserStatus = "ACTIVE"
	// inactive accounts keep their comments but cannot sign in
	UserStatusInactive UserStatus = "INACTIVE"
)
