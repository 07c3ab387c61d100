package models

import (
	"time"

	"github.com/importdesk/importdesk/internal/rbac"
)

// User represents a user account in the system.
// A user carries either a built-in system role or a tenant-defined custom
// role. Assignment lists and permission overrides feed the RBAC resolver.
type User struct {
	// ID is the unique identifier for the user.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the user to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// Active indicates whether the user account is active and can log in.
	Active bool
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// Role is the built-in system role, empty when a custom role is used.
	Role rbac.SystemRole `gorm:"type:varchar(50)"`
	// CustomRoleID references the tenant-defined role, empty for system roles.
	CustomRoleID string `gorm:"size:36;index"`
	// CustomRole is the associated custom role (loaded via foreign key).
	CustomRole *CustomRole `gorm:"foreignKey:CustomRoleID;references:ID;constraint:OnDelete:RESTRICT"`
	// AssignedEntityIDs lists the entity instances this user may act on
	// when their role lacks read-all on the entity type.
	AssignedEntityIDs []string `gorm:"serializer:json"`
	// PermissionOverrides is a per-entity patch merged on top of the
	// custom role's base permissions.
	PermissionOverrides map[rbac.EntityType]rbac.PermissionOverride `gorm:"serializer:json"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// RBACUser converts the account into the resolver's system-role user shape.
func (u *User) RBACUser() rbac.User {
	return rbac.User{
		ID:                u.ID,
		Role:              u.Role,
		AssignedEntityIDs: u.AssignedEntityIDs,
	}
}

// CRMUser converts the account into the resolver's custom-role user shape.
func (u *User) CRMUser() rbac.CRMUser {
	return rbac.CRMUser{
		ID:                  u.ID,
		CustomRoleID:        u.CustomRoleID,
		AssignedEntityIDs:   u.AssignedEntityIDs,
		PermissionOverrides: u.PermissionOverrides,
	}
}
