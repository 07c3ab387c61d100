package auth

import (
	"fmt"

	"gorm.io/gorm"

	usercontroller "github.com/importdesk/importdesk/internal/db/controller/user"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
)

// Service provides authorization decisions backed by the database.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CanAccess decides whether the user may perform action on the entity
// type, optionally against a concrete instance identified by entityID and
// owned by ownerID. A denial is a normal false result; errors are reserved
// for lookup failures and unknown roles.
func (s *Service) CanAccess(userID string, entity rbac.EntityType, action rbac.Action, entityID, ownerID string) (bool, error) {
	u, err := usercontroller.Get(s.db, userID)
	if err != nil {
		return false, fmt.Errorf("load user %s: %w", userID, err)
	}

	return s.canAccess(u, entity, action, entityID, ownerID)
}

func (s *Service) canAccess(u *models.User, entity rbac.EntityType, action rbac.Action, entityID, ownerID string) (bool, error) {
	if !u.Active {
		return false, nil
	}

	// Custom-role users resolve against their role's stored table plus
	// their personal overrides.
	if u.CustomRoleID != "" {
		if u.CustomRole == nil || !u.CustomRole.IsActive {
			return false, nil
		}

		return rbac.CanCRMUserAccessEntity(u.CRMUser(), u.CustomRole.Permissions, entity, action, entityID, ownerID), nil
	}

	// System-role users resolve against the built-in table. Validate the
	// role first so a corrupt account surfaces as an error, not a silent
	// denial.
	if _, err := rbac.RolePermissionsFor(u.Role); err != nil {
		return false, err
	}

	return rbac.CanAccessEntity(u.RBACUser(), entity, action, entityID, ownerID), nil
}

// Permissions returns the user's effective permission table.
func (s *Service) Permissions(userID string) (rbac.RolePermissions, error) {
	u, err := usercontroller.Get(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	if u.CustomRoleID != "" {
		if u.CustomRole == nil {
			return nil, fmt.Errorf("user %s references missing custom role %s", userID, u.CustomRoleID)
		}

		return rbac.ResolvePermissions(u.CRMUser(), u.CustomRole.Permissions), nil
	}

	return rbac.RolePermissionsFor(u.Role)
}
