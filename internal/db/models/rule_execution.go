package models

import "time"

// RuleExecution is the append-only audit record of one rule evaluation
// attempt against one deal. Records are never updated or deleted; cooldown
// state is derived from this log rather than kept in a parallel structure.
type RuleExecution struct {
	// ID is the unique identifier for the execution record.
	ID string `gorm:"primaryKey;size:36"`
	// TenantID scopes the record to one tenant.
	TenantID string `gorm:"size:36;index;not null"`
	// RuleID references the evaluated rule.
	RuleID string `gorm:"size:64;index:idx_rule_executions_rule_deal;not null"`
	// DealID references the deal the rule was evaluated against.
	DealID string `gorm:"size:36;index:idx_rule_executions_rule_deal;index;not null"`
	// Executed indicates whether the rule's actions ran. A record with
	// Executed false documents an evaluation that did not fire.
	Executed bool
	// Success indicates whether all actions completed without error.
	Success bool
	// ErrorMessage carries the first action error, empty on success.
	ErrorMessage string `gorm:"size:1024"`
	// ExecutionTimeMs is the wall-clock action runtime in milliseconds,
	// nil when the evaluation did not record a time.
	ExecutionTimeMs *int64
	// ExecutedAt is the time of the evaluation attempt.
	ExecutedAt time.Time `gorm:"index;not null"`
	// CreatedAt is the timestamp when the record was written (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RuleExecution model.
func (RuleExecution) TableName() string {
	return "rule_executions"
}

// RuleExecutionSummary aggregates a rule's execution log over a time
// window. It is derived on demand and never stored.
type RuleExecutionSummary struct {
	// RuleID is the summarized rule.
	RuleID string `json:"ruleId"`
	// PeriodStart is the inclusive window start.
	PeriodStart time.Time `json:"periodStart"`
	// PeriodEnd is the inclusive window end.
	PeriodEnd time.Time `json:"periodEnd"`
	// TotalExecutions counts all records in the window.
	TotalExecutions int64 `json:"totalExecutions"`
	// SuccessfulExecutions counts records with Success true.
	SuccessfulExecutions int64 `json:"successfulExecutions"`
	// FailedExecutions counts records with Success false.
	FailedExecutions int64 `json:"failedExecutions"`
	// AverageExecutionTimeMs averages ExecutionTimeMs over records that
	// recorded a time; zero when none did.
	AverageExecutionTimeMs float64 `json:"averageExecutionTimeMs"`
	// DealsAffected counts distinct deals in the window.
	DealsAffected int64 `json:"dealsAffected"`
	// LastExecutionAt is the most recent execution time in the window,
	// nil when the window is empty.
	LastExecutionAt *time.Time `json:"lastExecutionAt,omitempty"`
}
