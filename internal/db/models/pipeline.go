package models

import "time"

// PipelineStage is one ordered stage inside a pipeline.
type PipelineStage struct {
	// ID is the stage identifier, unique within the pipeline.
	ID string `json:"id"`
	// Name is the display name of the stage.
	Name string `json:"name"`
	// Order is the position of the stage, lower first.
	Order int `json:"order"`
}

// Pipeline represents a deal pipeline, e.g. "Dealer Acquisition" or
// "Vehicle Sales". Rules can be scoped to a single pipeline or apply
// globally across all of them.
type Pipeline struct {
	// ID is the unique identifier for the pipeline.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the pipeline to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// Name is the pipeline name, unique within a tenant.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_pipelines_tenant_name"`
	// Stages is the ordered stage list.
	Stages []PipelineStage `gorm:"serializer:json"`
	// IsDefault marks the pipeline new deals land in when none is given.
	IsDefault bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the pipeline was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the pipeline was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Pipeline model.
func (Pipeline) TableName() string {
	return "pipelines"
}

// FirstStageID returns the id of the lowest-ordered stage, or empty when
// the pipeline has no stages.
func (p *Pipeline) FirstStageID() string {
	if len(p.Stages) == 0 {
		return ""
	}

	first := p.Stages[0]
	for _, s := range p.Stages[1:] {
		if s.Order < first.Order {
			first = s
		}
	}

	return first.ID
}
