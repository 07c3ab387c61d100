// Package organisation provides CRUD operations for dealer organisations
// and their contacts.
package organisation

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
	// ErrOrganisationNotFound is returned when an organisation does not exist.
	ErrOrganisationNotFound = errors.New("organisation not found")
	// ErrOrganisationNameEmpty is returned when creating an organisation without a name.
	ErrOrganisationNameEmpty = errors.New("organisation name cannot be empty")
	// ErrContactNameEmpty is returned when creating a contact without a name.
	ErrContactNameEmpty = errors.New("contact name cannot be empty")
)

// Create inserts a new organisation. A missing id is generated.
func Create(db *gorm.DB, o *models.Organisation) (*models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if o == nil || o.Name == "" {
		return nil, ErrOrganisationNameEmpty
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	if result := db.Create(o); result.Error != nil {
		return nil, result.Error
	}

	return o, nil
}

// Get retrieves an organisation by id within a tenant.
func Get(db *gorm.DB, tenantID, id string) (*models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var o models.Organisation
	result := db.Where(idQuery, tenantID, id).First(&o)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrganisationNotFound
		}
		return nil, result.Error
	}

	return &o, nil
}

// GetAll retrieves every organisation of a tenant.
func GetAll(db *gorm.DB, tenantID string) ([]models.Organisation, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var orgs []models.Organisation
	result := db.Where(tenantIDQuery, tenantID).Order("name ASC").Find(&orgs)
	if result.Error != nil {
		return nil, result.Error
	}

	return orgs, nil
}

// CreateContact inserts a new contact under an existing organisation of
// the same tenant.
func CreateContact(db *gorm.DB, c *models.Contact) (*models.Contact, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if c == nil || c.Name == "" {
		return nil, ErrContactNameEmpty
	}

	if c.OrganisationID != "" {
		if _, err := Get(db, c.TenantID, c.OrganisationID); err != nil {
			return nil, err
		}
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if result := db.Create(c); result.Error != nil {
		return nil, result.Error
	}

	return c, nil
}

// GetContacts retrieves the contacts of one organisation.
func GetContacts(db *gorm.DB, tenantID, organisationID string) ([]models.Contact, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var contacts []models.Contact
	result := db.Where(tenantIDQuery, tenantID).
		Where("organisation_id = ?", organisationID).
		Order("name ASC").
		Find(&contacts)
	if result.Error != nil {
		return nil, result.Error
	}

	return contacts, nil
}
