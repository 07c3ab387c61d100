package models

import "time"

// RuleTrigger is a named deal-lifecycle event that causes rule evaluation.
type RuleTrigger string

const (
	// TriggerDealMarkedWon fires when a deal is marked as won.
	TriggerDealMarkedWon RuleTrigger = "DEAL_MARKED_WON"
	// TriggerDealMarkedLost fires when a deal is marked as lost.
	TriggerDealMarkedLost RuleTrigger = "DEAL_MARKED_LOST"
	// TriggerDealInactive fires when a deal has seen no activity for the
	// period configured in the rule's trigger config.
	TriggerDealInactive RuleTrigger = "DEAL_INACTIVE"
)

// RuleActionType tags a rule action variant. Each type has exactly one
// registered executor interpreting its parameters.
type RuleActionType string

const (
	// ActionSpawnInPipeline creates a follow-up deal in another pipeline.
	ActionSpawnInPipeline RuleActionType = "SPAWN_IN_PIPELINE"
	// ActionSendNotification sends a notification to a channel or user.
	ActionSendNotification RuleActionType = "SEND_NOTIFICATION"
	// ActionRequireLostReason validates that a lost deal carries a reason.
	ActionRequireLostReason RuleActionType = "REQUIRE_LOST_REASON"
)

// LogicalOperator chains a condition to the previous one.
type LogicalOperator string

const (
	// LogicalAnd requires both linked conditions to hold.
	LogicalAnd LogicalOperator = "AND"
	// LogicalOr requires either linked condition to hold.
	LogicalOr LogicalOperator = "OR"
)

// RuleCondition is one field/operator/value predicate over a deal
// snapshot. Conditions form a left-to-right chain joined by each
// condition's LogicalOperator (relative to its predecessor).
type RuleCondition struct {
	// Field is the deal field the condition inspects.
	Field string `json:"field"`
	// Operator compares the field to Value, e.g. "==", ">", "contains".
	Operator string `json:"operator"`
	// Value is the comparison operand.
	Value any `json:"value"`
	// LogicalOperator joins this condition to the previous one; ignored
	// on the first condition, defaults to AND when empty.
	LogicalOperator LogicalOperator `json:"logicalOperator,omitempty"`
}

// RuleAction is one ordered action a rule performs when it fires.
type RuleAction struct {
	// Type selects the executor for this action.
	Type RuleActionType `json:"type"`
	// Parameters is the action-specific parameter map, decoded by the
	// executor into its typed parameter struct.
	Parameters map[string]any `json:"parameters"`
	// Delay is an optional delay in minutes before the action runs.
	Delay int `json:"delay,omitempty"`
	// Order is the position of this action, lower first.
	Order int `json:"order"`
}

// PipelineRule represents one automation rule of the CRM. A rule is scoped
// to exactly one pipeline or marked global, never both; system rules are
// seeded by the platform and protected from deletion.
type PipelineRule struct {
	// ID is the unique identifier for the rule.
	ID string `gorm:"primaryKey;size:64"`
	// TenantID scopes the rule to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// PipelineID scopes the rule to one pipeline; empty for global rules.
	PipelineID string `gorm:"size:36;index"`
	// IsGlobal marks the rule applicable across all pipelines.
	IsGlobal bool `gorm:"default:false"`
	// Trigger is the deal-lifecycle event this rule reacts to. The
	// column is named trigger_event because TRIGGER is reserved in MySQL.
	Trigger RuleTrigger `gorm:"column:trigger_event;type:varchar(40);index;not null"`
	// TriggerConfig carries trigger-specific parameters, e.g. the
	// inactivity threshold for DEAL_INACTIVE.
	TriggerConfig map[string]any `gorm:"serializer:json"`
	// Conditions is the condition chain gating the actions.
	Conditions []RuleCondition `gorm:"serializer:json"`
	// Actions is the ordered action list executed when the rule fires.
	Actions []RuleAction `gorm:"serializer:json"`
	// IsActive indicates whether the rule is currently evaluated.
	IsActive bool `gorm:"default:true;index"`
	// Priority orders evaluation, lower runs first. Ties are stable in
	// insertion order.
	Priority int `gorm:"default:100"`
	// ExecuteOnce limits the rule to at most one successful firing per deal.
	ExecuteOnce bool `gorm:"default:false"`
	// CooldownMinutes is the minimum time between firings for the same
	// deal; zero disables the cooldown.
	CooldownMinutes int `gorm:"default:0"`
	// IsSystem indicates a platform-seeded rule that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// IsMigrated flags a rule that replaced previously hardcoded logic.
	IsMigrated bool `gorm:"default:false"`
	// LastTriggeredAt is the time the rule last fired, nil if never.
	LastTriggeredAt *time.Time
	// ExecutionCount is the number of times the rule has fired.
	ExecutionCount int64 `gorm:"default:0"`
	// CreatedAt is the timestamp when the rule was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the rule was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the PipelineRule model.
func (PipelineRule) TableName() string {
	return "pipeline_rules"
}

// AppliesTo reports whether the rule is in scope for the given pipeline.
func (r *PipelineRule) AppliesTo(pipelineID string) bool {
	return r.IsGlobal || r.PipelineID == pipelineID
}
