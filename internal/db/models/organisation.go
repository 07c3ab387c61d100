package models

import "time"

// Organisation represents a dealer or partner organisation.
type Organisation struct {
	// ID is the unique identifier for the organisation.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the organisation to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// Name is the organisation name.
	Name string `gorm:"size:255;not null"`
	// Country is the ISO 3166-1 alpha-2 country code.
	Country string `gorm:"size:2"`
	// VATNumber is the organisation's VAT registration number.
	VATNumber string `gorm:"size:32"`
	// OwnerID is the user responsible for the organisation.
	OwnerID string `gorm:"size:36;index"`
	// CreatedAt is the timestamp when the organisation was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the organisation was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Organisation model.
func (Organisation) TableName() string {
	return "organisations"
}

// Contact represents a person at an organisation.
type Contact struct {
	// ID is the unique identifier for the contact.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the contact to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// OrganisationID references the organisation this contact belongs to.
	OrganisationID string `gorm:"size:36;index"`
	// Name is the contact's full name.
	Name string `gorm:"size:255;not null"`
	// Email is the contact's email address.
	Email string `gorm:"size:255"`
	// Phone is the contact's phone number.
	Phone string `gorm:"size:32"`
	// OwnerID is the user responsible for the contact.
	OwnerID string `gorm:"size:36;index"`
	// CreatedAt is the timestamp when the contact was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the contact was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Contact model.
func (Contact) TableName() string {
	return "contacts"
}

// Lead represents an unqualified prospect that may become a deal.
type Lead struct {
	// ID is the unique identifier for the lead.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the lead to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// Name is the lead's display name.
	Name string `gorm:"size:255;not null"`
	// Source records where the lead came from.
	Source string `gorm:"size:100"`
	// OwnerID is the user responsible for the lead.
	OwnerID string `gorm:"size:36;index"`
	// CreatedAt is the timestamp when the lead was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the lead was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Lead model.
func (Lead) TableName() string {
	return "leads"
}
