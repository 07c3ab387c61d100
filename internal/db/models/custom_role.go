package models

import (
	"time"

	"github.com/importdesk/importdesk/internal/rbac"
)

// CustomRole represents a tenant-defined role in the CRM.
// Unlike the built-in system roles, custom roles carry an editable
// permission table and can be created, updated and (when unused and not
// flagged as system) deleted by tenant administrators.
type CustomRole struct {
	// ID is the unique identifier for the custom role.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the role to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// Name is the role name, unique within a tenant.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_custom_roles_tenant_name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// Permissions is the per-entity-type permission table for this role.
	Permissions rbac.RolePermissions `gorm:"serializer:json"`
	// IsSystem indicates a platform-seeded role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// IsActive indicates whether the role can currently be assigned.
	IsActive bool `gorm:"default:true"`
	// UserCount is the number of users carrying this role, used for
	// delete protection.
	UserCount int `gorm:"default:0"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the CustomRole model.
func (CustomRole) TableName() string {
	return "custom_roles"
}
