package models

import "time"

// DealStatus represents the lifecycle state of a deal.
type DealStatus string

const (
	// DealStatusOpen indicates an in-progress deal.
	DealStatusOpen DealStatus = "open"
	// DealStatusWon indicates a deal that was closed successfully.
	DealStatusWon DealStatus = "won"
	// DealStatusLost indicates a deal that was closed unsuccessfully.
	DealStatusLost DealStatus = "lost"
)

// Deal represents a CRM deal moving through a pipeline. Deal lifecycle
// events (won, lost, inactive) are the triggers the rule engine reacts to.
type Deal struct {
	// ID is the unique identifier for the deal.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the deal to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// PipelineID is the pipeline this deal currently sits in.
	PipelineID string `gorm:"size:36;index;not null"`
	// StageID is the current stage within the pipeline.
	StageID string `gorm:"size:36"`
	// Title is the deal title shown in the dashboard.
	Title string `gorm:"size:255;not null"`
	// OrganisationID references the organisation this deal belongs to.
	OrganisationID string `gorm:"size:36;index"`
	// OwnerID is the user responsible for the deal.
	OwnerID string `gorm:"size:36;index"`
	// Value is the monetary value of the deal.
	Value float64
	// Currency is the ISO 4217 currency code for Value.
	Currency string `gorm:"size:3;default:'EUR'"`
	// Status is the lifecycle state of the deal.
	Status DealStatus `gorm:"type:varchar(10);default:'open';index"`
	// LostReason records why a lost deal was lost, empty otherwise.
	LostReason string `gorm:"size:255"`
	// SourceDealID references the deal this one was spawned from, if any.
	SourceDealID string `gorm:"size:36"`
	// LastActivityAt is the timestamp of the most recent activity on the
	// deal, used by the inactivity trigger.
	LastActivityAt *time.Time
	// CreatedAt is the timestamp when the deal was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the deal was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Deal model.
func (Deal) TableName() string {
	return "deals"
}
