// Package customrole provides CRUD operations for tenant-defined roles.
package customrole

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const idQuery = "tenant_id = ? AND id = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRoleNotFound is returned when a custom role does not exist.
	ErrRoleNotFound = errors.New("custom role not found")
	// ErrRoleNameEmpty is returned when creating a role without a name.
	ErrRoleNameEmpty = errors.New("custom role name cannot be empty")
	// ErrRoleProtected is returned when deleting a system role.
	ErrRoleProtected = errors.New("system roles cannot be deleted")
	// ErrRoleInUse is returned when deleting a role that users still carry.
	ErrRoleInUse = errors.New("custom role is still assigned to users")
)

// Create inserts a new custom role. A missing id is generated.
func Create(db *gorm.DB, role *models.CustomRole) (*models.CustomRole, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if role == nil || role.Name == "" {
		return nil, ErrRoleNameEmpty
	}

	if role.ID == "" {
		role.ID = uuid.NewString()
	}

	if result := db.Create(role); result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// Get retrieves a custom role by id within a tenant.
func Get(db *gorm.DB, tenantID, id string) (*models.CustomRole, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.CustomRole
	result := db.Where(idQuery, tenantID, id).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetAll retrieves every custom role of a tenant.
func GetAll(db *gorm.DB, tenantID string) ([]models.CustomRole, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.CustomRole
	result := db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// AdjustUserCount shifts the role's user counter by delta, keeping the
// delete protection accurate when users are assigned or unassigned.
func AdjustUserCount(db *gorm.DB, tenantID, id string, delta int) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.CustomRole{}).
		Where(idQuery, tenantID, id).
		Update("user_count", gorm.Expr("user_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

// Delete removes a custom role. System roles and roles still carried by
// users are protected.
func Delete(db *gorm.DB, tenantID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := Get(db, tenantID, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrRoleProtected
	}
	if role.UserCount > 0 {
		return ErrRoleInUse
	}

	return db.Where(idQuery, tenantID, id).Delete(&models.CustomRole{}).Error
}
