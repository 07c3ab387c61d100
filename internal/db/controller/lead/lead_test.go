package lead

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const testTenant = "tenant-test"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Lead{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreateAndGet(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(nil, &models.Lead{Name: "Fleet prospect"})
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Create(db, nil)
	require.ErrorIs(t, err, ErrLeadNameEmpty)

	_, err = Create(db, &models.Lead{TenantID: testTenant})
	require.ErrorIs(t, err, ErrLeadNameEmpty)

	created, err := Create(db, &models.Lead{
		TenantID: testTenant, Name: "Fleet prospect", Source: "trade fair", OwnerID: "user-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := Get(db, testTenant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "trade fair", got.Source)

	_, err = Get(db, "tenant-other", created.ID)
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	for _, n := range []string{"Zimmer Cars", "Auto Ahrens"} {
		_, err := Create(db, &models.Lead{TenantID: testTenant, Name: n})
		require.NoError(t, err)
	}

	leads, err := GetAll(db, testTenant)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Auto Ahrens", leads[0].Name)

	other, err := GetAll(db, "tenant-other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
