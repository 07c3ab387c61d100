// Package lead provides CRUD operations for unqualified prospects.
package lead

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const (
	tenantIDQuery = "tenant_id = ?"
	idQuery       = "tenant_id = ? AND id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrLeadNotFound is returned when a lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrLeadNameEmpty is returned when creating a lead without a name.
	ErrLeadNameEmpty = errors.New("lead name cannot be empty")
)

// Create inserts a new lead. A missing id is generated.
func Create(db *gorm.DB, l *models.Lead) (*models.Lead, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if l == nil || l.Name == "" {
		return nil, ErrLeadNameEmpty
	}

	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	if result := db.Create(l); result.Error != nil {
		return nil, result.Error
	}

	return l, nil
}

// Get retrieves a lead by id within a tenant.
func Get(db *gorm.DB, tenantID, id string) (*models.Lead, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var l models.Lead
	result := db.Where(idQuery, tenantID, id).First(&l)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, result.Error
	}

	return &l, nil
}

// GetAll retrieves every lead of a tenant.
func GetAll(db *gorm.DB, tenantID string) ([]models.Lead, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var leads []models.Lead
	result := db.Where(tenantIDQuery, tenantID).Order("name ASC").Find(&leads)
	if result.Error != nil {
		return nil, result.Error
	}

	return leads, nil
}
