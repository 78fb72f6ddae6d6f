package users_enums

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "OWNER"
	ProjectRoleAdmin  ProjectRole = "PROJECT_ADMIN"
	ProjectRoleMember ProjectRole = "PROJECT_MEMBER"
	// read-only access, granted by share links
	ProjectRoleViewer ProjectRole = "VIEWER"
)

func (r ProjectRole) IsValid() bool {
	switch r {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember, ProjectRoleViewer:
		return true
	default:
		return false
	}
}

// CanManageMembers reports whether the role may add or remove members.
func (r ProjectRole) CanManageMembers() bool {
	return r == ProjectRoleOwner || r == ProjectRoleAdmin
}

// CanComment reports whether the role may write comments.
func (r ProjectRole) CanComment() bool {
	return r != ProjectRoleViewer && r.IsValid()
}
