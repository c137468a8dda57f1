package models

import (
	"time"
)

// Role is a project-scoped permission level. The set is closed and totally
// ordered: owner capabilities are a superset of participant capabilities.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleParticipant Role = "participant"
)

func roleLevel(r Role) int {
	switch r {
	case RoleOwner:
		return 2
	case RoleParticipant:
		return 1
	default:
		return 0
	}
}

// Allows reports whether a holder of r meets the given minimum role.
func (r Role) Allows(min Role) bool {
	return roleLevel(r) >= roleLevel(min)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return roleLevel(r) > 0
}

// ProjectAccess links a user to a project with a role. Exactly one row
// exists per (project, user) pair; the owner row is created together with
// the project and removed only when the project is deleted.
type ProjectAccess struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      Role      `gorm:"size:50;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectAccess) TableName() string { return "project_accesses" }
