package access

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
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(&models.CustomRole{}, &models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	app := fiber.New()
	cfg := &config.Config{
		Webserver: config.Webserver{URL: "http://localhost", Port: 3000},
	}

	var s Service
	s.Init(app, cfg, db, authservice.NewService(db))

	return app
}

func performCheck(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func decodeCheckResponse(t *testing.T, resp *http.Response) CheckResponse {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	var out CheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func TestCheck(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.User{
		ID: "user-admin", TenantID: "tenant-test", Username: "admin",
		Active: true, Role: rbac.RoleAdmin,
	}).Error)
	require.NoError(t, db.Create(&models.User{
		ID: "user-junior", TenantID: "tenant-test", Username: "junior",
		Active: true, Role: rbac.RoleJuniorSalesManager,
		AssignedEntityIDs: []string{"deal-1"},
	}).Error)
	require.NoError(t, db.Create(&models.User{
		ID: "user-corrupt", TenantID: "tenant-test", Username: "corrupt",
		Active: true, Role: "INTERN",
	}).Error)

	app := newTestApp(t, db)

	testCases := []struct {
		name           string
		body           string
		expectedStatus int
		expectedAllow  bool
	}{
		{
			name:           "admin allowed",
			body:           `{"userId":"user-admin","entityType":"deals","action":"delete","entityId":"deal-9"}`,
			expectedStatus: http.StatusOK,
			expectedAllow:  true,
		},
		{
			name:           "assigned entity allowed",
			body:           `{"userId":"user-junior","entityType":"deals","action":"update","entityId":"deal-1"}`,
			expectedStatus: http.StatusOK,
			expectedAllow:  true,
		},
		{
			name:           "unassigned entity denied",
			body:           `{"userId":"user-junior","entityType":"deals","action":"update","entityId":"deal-2","entityOwnerId":"user-other"}`,
			expectedStatus: http.StatusOK,
			expectedAllow:  false,
		},
		{
			name:           "role denial wins over assignment",
			body:           `{"userId":"user-junior","entityType":"deals","action":"delete","entityId":"deal-1"}`,
			expectedStatus: http.StatusOK,
			expectedAllow:  false,
		},
		{
			name:           "unknown role is a bad request",
			body:           `{"userId":"user-corrupt","entityType":"deals","action":"read"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown user is not found",
			body:           `{"userId":"nonexistent","entityType":"deals","action":"read"}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid action fails validation",
			body:           `{"userId":"user-admin","entityType":"deals","action":"approve"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing user id fails validation",
			body:           `{"entityType":"deals","action":"read"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed payload",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performCheck(t, app, tc.body)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			if tc.expectedStatus == http.StatusOK {
				out := decodeCheckResponse(t, resp)
				assert.Equal(t, tc.expectedAllow, out.Allowed)
			} else {
				_ = resp.Body.Close()
			}
		})
	}
}
