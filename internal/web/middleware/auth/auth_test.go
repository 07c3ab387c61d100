package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(&models.CustomRole{}, &models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// newGuardedApp wires the principal and entity-permission middleware in
// front of a handler echoing the resolved principal id, mirroring how the
// web service guards its API routes.
func newGuardedApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(Principal(db))

	svc := authservice.NewService(db)
	guard := RequireEntityPermission(svc, rbac.EntityDeals, rbac.ActionUpdate)

	app.Post("/deals/:id", guard, func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return c.SendString(u.ID)
	})

	return app
}

func TestPrincipalAndRequireEntityPermission(t *testing.T) {
	db := newTestDB(t)

	users := []models.User{
		{ID: "user-admin", TenantID: "tenant-test", Username: "admin", Active: true, Role: rbac.RoleAdmin},
		{
			ID: "user-junior", TenantID: "tenant-test", Username: "junior", Active: true,
			Role: rbac.RoleJuniorSalesManager, AssignedEntityIDs: []string{"deal-1"},
		},
		{ID: "user-accountant", TenantID: "tenant-test", Username: "books", Active: true, Role: rbac.RoleAccountant},
		{ID: "user-gone", TenantID: "tenant-test", Username: "gone", Active: false, Role: rbac.RoleAdmin},
		{ID: "user-corrupt", TenantID: "tenant-test", Username: "corrupt", Active: true, Role: "INTERN"},
	}
	for _, u := range users {
		require.NoError(t, db.Create(&u).Error)
	}

	app := newGuardedApp(t, db)

	testCases := []struct {
		name           string
		userID         string
		dealID         string
		expectedStatus int
	}{
		{
			name:           "missing identity header",
			userID:         "",
			dealID:         "deal-1",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown user",
			userID:         "nonexistent",
			dealID:         "deal-1",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "disabled account",
			userID:         "user-gone",
			dealID:         "deal-1",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin allowed",
			userID:         "user-admin",
			dealID:         "deal-9",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "junior allowed on assigned deal",
			userID:         "user-junior",
			dealID:         "deal-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "junior denied on foreign deal",
			userID:         "user-junior",
			dealID:         "deal-9",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "accountant lacks deal update",
			userID:         "user-accountant",
			dealID:         "deal-1",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unresolvable role is an internal error",
			userID:         "user-corrupt",
			dealID:         "deal-1",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/deals/"+tc.dealID, nil)
			if tc.userID != "" {
				req.Header.Set(HeaderUserID, tc.userID)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err, "app.Test failed")

			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == http.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				// the handler sees the principal loaded by the middleware
				assert.Equal(t, tc.userID, string(body))
			}
		})
	}
}
