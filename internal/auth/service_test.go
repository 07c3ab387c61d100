package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
)

const testTenant = "tenant-test"

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.CustomRole{}, &models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedUsers(t *testing.T, db *gorm.DB, users []models.User) {
	t.Helper()
	for _, u := range users {
		err := db.Create(&u).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestCanAccessSystemRoles(t *testing.T) {
	db := setupTestDB(t)

	seedUsers(t, db, []models.User{
		{ID: "user-admin", TenantID: testTenant, Username: "admin", Active: true, Role: rbac.RoleAdmin},
		{ID: "user-junior", TenantID: testTenant, Username: "junior", Active: true, Role: rbac.RoleJuniorSalesManager, AssignedEntityIDs: []string{"deal-1"}},
		{ID: "user-inactive", TenantID: testTenant, Username: "inactive", Active: false, Role: rbac.RoleAdmin},
		{ID: "user-corrupt", TenantID: testTenant, Username: "corrupt", Active: true, Role: "INTERN"},
	})

	svc := NewService(db)

	testCases := []struct {
		name     string
		userID   string
		entity   rbac.EntityType
		action   rbac.Action
		entityID string
		ownerID  string
		expected bool
		wantErr  bool
	}{
		{
			name:     "admin may delete any deal",
			userID:   "user-admin",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionDelete,
			entityID: "deal-99",
			expected: true,
		},
		{
			name:     "junior may update an assigned deal",
			userID:   "user-junior",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionUpdate,
			entityID: "deal-1",
			expected: true,
		},
		{
			name:     "junior may update an owned deal",
			userID:   "user-junior",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionUpdate,
			entityID: "deal-2",
			ownerID:  "user-junior",
			expected: true,
		},
		{
			name:     "junior may not update a foreign deal",
			userID:   "user-junior",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionUpdate,
			entityID: "deal-2",
			ownerID:  "user-other",
			expected: false,
		},
		{
			name:     "junior may not delete even an assigned deal",
			userID:   "user-junior",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionDelete,
			entityID: "deal-1",
			expected: false,
		},
		{
			name:     "inactive account is always denied",
			userID:   "user-inactive",
			entity:   rbac.EntityDeals,
			action:   rbac.ActionRead,
			expected: false,
		},
		{
			name:    "unknown role surfaces as an error",
			userID:  "user-corrupt",
			entity:  rbac.EntityDeals,
			action:  rbac.ActionRead,
			wantErr: true,
		},
		{
			name:    "unknown user surfaces as an error",
			userID:  "nonexistent",
			entity:  rbac.EntityDeals,
			action:  rbac.ActionRead,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.CanAccess(tc.userID, tc.entity, tc.action, tc.entityID, tc.ownerID)

			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestCanAccessCustomRoles(t *testing.T) {
	db := setupTestDB(t)

	readOnlyDeals := models.CustomRole{
		ID:       "role-viewer",
		TenantID: testTenant,
		Name:     "Deal Viewer",
		IsActive: true,
		Permissions: rbac.RolePermissions{
			rbac.EntityDeals: {Read: true, ReadAll: true},
		},
	}
	require.NoError(t, db.Create(&readOnlyDeals).Error)

	disabledRole := models.CustomRole{
		ID:       "role-disabled",
		TenantID: testTenant,
		Name:     "Disabled",
		IsActive: false,
		Permissions: rbac.RolePermissions{
			rbac.EntityDeals: {Read: true, ReadAll: true},
		},
	}
	require.NoError(t, db.Create(&disabledRole).Error)

	updateTrue := true
	seedUsers(t, db, []models.User{
		{ID: "user-viewer", TenantID: testTenant, Username: "viewer", Active: true, CustomRoleID: "role-viewer"},
		{
			ID: "user-boosted", TenantID: testTenant, Username: "boosted", Active: true,
			CustomRoleID: "role-viewer",
			PermissionOverrides: map[rbac.EntityType]rbac.PermissionOverride{
				rbac.EntityDeals: {Update: &updateTrue},
			},
		},
		{ID: "user-disabled-role", TenantID: testTenant, Username: "disabled", Active: true, CustomRoleID: "role-disabled"},
	})

	svc := NewService(db)

	ok, err := svc.CanAccess("user-viewer", rbac.EntityDeals, rbac.ActionRead, "deal-1", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAccess("user-viewer", rbac.EntityDeals, rbac.ActionUpdate, "deal-1", "")
	require.NoError(t, err)
	assert.False(t, ok)

	// Overrides patch the role's base flags per user. ReadAll is granted by
	// the role, so the widened Update applies to any deal.
	ok, err = svc.CanAccess("user-boosted", rbac.EntityDeals, rbac.ActionUpdate, "deal-1", "")
	require.NoError(t, err)
	assert.True(t, ok)

	// A deactivated custom role denies everything.
	ok, err = svc.CanAccess("user-disabled-role", rbac.EntityDeals, rbac.ActionRead, "deal-1", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPermissions(t *testing.T) {
	db := setupTestDB(t)

	role := models.CustomRole{
		ID:       "role-viewer",
		TenantID: testTenant,
		Name:     "Deal Viewer",
		IsActive: true,
		Permissions: rbac.RolePermissions{
			rbac.EntityDeals: {Read: true},
		},
	}
	require.NoError(t, db.Create(&role).Error)

	deleteTrue := true
	seedUsers(t, db, []models.User{
		{ID: "user-accountant", TenantID: testTenant, Username: "acc", Active: true, Role: rbac.RoleAccountant},
		{
			ID: "user-viewer", TenantID: testTenant, Username: "viewer", Active: true,
			CustomRoleID: "role-viewer",
			PermissionOverrides: map[rbac.EntityType]rbac.PermissionOverride{
				rbac.EntityDeals: {Delete: &deleteTrue},
			},
		},
	})

	svc := NewService(db)

	perms, err := svc.Permissions("user-accountant")
	require.NoError(t, err)
	assert.True(t, perms[rbac.EntityContracts].Create)
	assert.False(t, perms[rbac.EntityDeals].Create)

	perms, err = svc.Permissions("user-viewer")
	require.NoError(t, err)
	assert.True(t, perms[rbac.EntityDeals].Read)
	assert.True(t, perms[rbac.EntityDeals].Delete)
	assert.False(t, perms[rbac.EntityDeals].Create)

	_, err = svc.Permissions("nonexistent")
	require.Error(t, err)
}
