// Package pipeline provides CRUD operations for deal pipelines.
package pipeline

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const (
	tenantIDQuery = "tenant_id = ?"
	nameQuery     = "tenant_id = ? AND name = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrPipelineNotFound is returned when a pipeline does not exist.
	ErrPipelineNotFound = errors.New("pipeline not found")
	// ErrPipelineNameEmpty is returned when creating a pipeline without a name.
	ErrPipelineNameEmpty = errors.New("pipeline name cannot be empty")
)

// Create inserts a new pipeline. A missing id is generated.
func Create(db *gorm.DB, p *models.Pipeline) (*models.Pipeline, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if p == nil || p.Name == "" {
		return nil, ErrPipelineNameEmpty
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if result := db.Create(p); result.Error != nil {
		return nil, result.Error
	}

	return p, nil
}

// Get retrieves a pipeline by id within a tenant.
func Get(db *gorm.DB, tenantID, id string) (*models.Pipeline, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Pipeline
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPipelineNotFound
		}
		return nil, result.Error
	}

	return &p, nil
}

// GetByName retrieves a pipeline by its tenant-unique name.
func GetByName(db *gorm.DB, tenantID, name string) (*models.Pipeline, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrPipelineNameEmpty
	}

	var p models.Pipeline
	result := db.Where(nameQuery, tenantID, name).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPipelineNotFound
		}
		return nil, result.Error
	}

	return &p, nil
}

// GetAll retrieves every pipeline of a tenant.
func GetAll(db *gorm.DB, tenantID string) ([]models.Pipeline, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var pipelines []models.Pipeline
	result := db.Where(tenantIDQuery, tenantID).Order("name ASC").Find(&pipelines)
	if result.Error != nil {
		return nil, result.Error
	}

	return pipelines, nil
}
