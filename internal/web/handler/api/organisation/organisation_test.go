package organisation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(
		&models.CustomRole{},
		&models.User{},
		&models.Organisation{},
		&models.Contact{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	app := fiber.New()
	cfg := &config.Config{
		Webserver: config.Webserver{URL: "http://localhost", Port: 3000},
	}

	app.Use(handler.APIPath, authmw.Principal(db))

	var s Service
	s.Init(app, cfg, db, authservice.NewService(db))

	return app
}

func perform(t *testing.T, app *fiber.App, method, target, userID, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(authmw.HeaderUserID, userID)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func TestOrganisationRoutes(t *testing.T) {
	db := newTestDB(t)

	users := []models.User{
		{ID: "user-admin", TenantID: "tenant-test", Username: "admin", Active: true, Role: rbac.RoleAdmin},
		{ID: "user-logistics", TenantID: "tenant-test", Username: "logistics", Active: true, Role: rbac.RoleLogisticsCoordinator},
	}
	for _, u := range users {
		require.NoError(t, db.Create(&u).Error)
	}

	require.NoError(t, db.Create(&models.Organisation{
		ID: "org-1", TenantID: "tenant-test", Name: "Autohaus Schmidt", OwnerID: "user-admin",
	}).Error)

	app := newTestApp(t, db)

	testCases := []struct {
		name           string
		method         string
		target         string
		userID         string
		body           string
		expectedStatus int
	}{
		{
			name:           "list without identity",
			method:         http.MethodGet,
			target:         Path,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "logistics coordinator may list",
			method:         http.MethodGet,
			target:         Path,
			userID:         "user-logistics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "logistics coordinator may not create",
			method:         http.MethodPost,
			target:         Path,
			userID:         "user-logistics",
			body:           `{"name":"Wagen Weber"}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "create without name fails validation",
			method:         http.MethodPost,
			target:         Path,
			userID:         "user-admin",
			body:           `{"country":"DE"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "admin creates an organisation",
			method:         http.MethodPost,
			target:         Path,
			userID:         "user-admin",
			body:           `{"name":"Wagen Weber","country":"DE"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown organisation",
			method:         http.MethodGet,
			target:         Path + "/nonexistent",
			userID:         "user-admin",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "contact under unknown organisation",
			method:         http.MethodPost,
			target:         Path + "/nonexistent/contacts",
			userID:         "user-admin",
			body:           `{"name":"Hans Gruber"}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "admin creates a contact",
			method:         http.MethodPost,
			target:         Path + "/org-1/contacts",
			userID:         "user-admin",
			body:           `{"name":"Hans Gruber","email":"hans@example.com"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "logistics coordinator reads contacts",
			method:         http.MethodGet,
			target:         Path + "/org-1/contacts",
			userID:         "user-logistics",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := perform(t, app, tc.method, tc.target, tc.userID, tc.body)

			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == http.StatusCreated && strings.HasSuffix(tc.target, "contacts") {
				var contact models.Contact
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&contact))
				assert.Equal(t, "org-1", contact.OrganisationID)
				// the creating user becomes the owner
				assert.Equal(t, "user-admin", contact.OwnerID)
			}
		})
	}
}
