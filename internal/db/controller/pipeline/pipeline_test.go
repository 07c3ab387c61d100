package pipeline

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const testTenant = "tenant-test"

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.Pipeline{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		pipeline      *models.Pipeline
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			pipeline:      &models.Pipeline{Name: "Dealer Acquisition"},
			expectedError: ErrDBNil,
		},
		{
			name:          "nil pipeline",
			dbParam:       db,
			pipeline:      nil,
			expectedError: ErrPipelineNameEmpty,
		},
		{
			name:          "empty name",
			dbParam:       db,
			pipeline:      &models.Pipeline{TenantID: testTenant},
			expectedError: ErrPipelineNameEmpty,
		},
		{
			name:    "successful create",
			dbParam: db,
			pipeline: &models.Pipeline{
				TenantID: testTenant,
				Name:     "Dealer Acquisition",
				Stages: []models.PipelineStage{
					{ID: "s1", Name: "First Contact", Order: 1},
					{ID: "s2", Name: "Negotiation", Order: 2},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			created, err := Create(tc.dbParam, tc.pipeline)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, created)
			} else {
				require.NoError(t, err)
				require.NotNil(t, created)
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, "s1", created.FirstStageID())
			}
		})
	}
}

func TestGetAndGetByName(t *testing.T) {
	db := setupTestDB(t)

	seeded, err := Create(db, &models.Pipeline{
		TenantID: testTenant,
		Name:     "Vehicle Sales",
		Stages:   []models.PipelineStage{{ID: "vs-1", Name: "Intake", Order: 1}},
	})
	require.NoError(t, err)

	p, err := Get(db, testTenant, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vehicle Sales", p.Name)

	p, err = GetByName(db, testTenant, "Vehicle Sales")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, p.ID)

	_, err = Get(db, testTenant, "nonexistent")
	require.ErrorIs(t, err, ErrPipelineNotFound)

	_, err = GetByName(db, testTenant, "nonexistent")
	require.ErrorIs(t, err, ErrPipelineNotFound)

	_, err = GetByName(db, "tenant-other", "Vehicle Sales")
	require.ErrorIs(t, err, ErrPipelineNotFound)

	_, err = GetByName(db, testTenant, "")
	require.ErrorIs(t, err, ErrPipelineNameEmpty)

	_, err = Get(nil, testTenant, seeded.ID)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{"Vehicle Sales", "Dealer Acquisition"} {
		_, err := Create(db, &models.Pipeline{TenantID: testTenant, Name: name})
		require.NoError(t, err)
	}

	pipelines, err := GetAll(db, testTenant)
	require.NoError(t, err)
	require.Len(t, pipelines, 2)
	// Sorted by name.
	assert.Equal(t, "Dealer Acquisition", pipelines[0].Name)
	assert.Equal(t, "Vehicle Sales", pipelines[1].Name)

	pipelines, err = GetAll(db, "tenant-other")
	require.NoError(t, err)
	assert.Empty(t, pipelines)

	_, err = GetAll(nil, testTenant)
	require.ErrorIs(t, err, ErrDBNil)
}
