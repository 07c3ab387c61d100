package rule

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

// CanExecute reports whether a rule may fire for a deal right now.
// It denies when the rule is missing or inactive, when the cooldown window
// since the last executed run has not elapsed, or when an execute-once rule
// already has a successful execution for the deal.
//
// Cooldown state is derived from the execution log (the latest executed
// record for the pair), so the log stays the single source of truth.
func CanExecute(db *gorm.DB, tenantID, ruleID, dealID string) (bool, error) {
	return canExecuteAt(db, tenantID, ruleID, dealID, time.Now())
}

func canExecuteAt(db *gorm.DB, tenantID, ruleID, dealID string, now time.Time) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	r, err := Get(db, tenantID, ruleID)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			return false, nil
		}
		return false, err
	}
	if !r.IsActive {
		return false, nil
	}

	if r.CooldownMinutes > 0 {
		last, err := LastExecutionAt(db, tenantID, ruleID, dealID)
		if err != nil {
			return false, err
		}
		if last != nil && now.Sub(*last) < time.Duration(r.CooldownMinutes)*time.Minute {
			return false, nil
		}
	}

	if r.ExecuteOnce {
		var count int64
		result := db.Model(&models.RuleExecution{}).
			Where(executionKeyQuery, tenantID, ruleID, dealID).
			Where("executed = ? AND success = ?", true, true).
			Count(&count)
		if result.Error != nil {
			return false, result.Error
		}
		if count > 0 {
			return false, nil
		}
	}

	return true, nil
}

// LastExecutionAt returns the time of the latest executed run of a rule
// for a deal, or nil when the pair has no executed record.
func LastExecutionAt(db *gorm.DB, tenantID, ruleID, dealID string) (*time.Time, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var exec models.RuleExecution
	result := db.Where(executionKeyQuery, tenantID, ruleID, dealID).
		Where("executed = ?", true).
		Order("executed_at DESC").
		First(&exec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &exec.ExecutedAt, nil
}

// MarkExecuted stamps "now" as the last execution of a rule for a deal by
// appending a minimal executed record to the log. It exists for callers
// that run an action out-of-band; RecordExecution with Executed set arms
// the cooldown by itself, so the engine does not call MarkExecuted after
// recording.
func MarkExecuted(db *gorm.DB, tenantID, ruleID, dealID string) error {
	if db == nil {
		return ErrDBNil
	}

	exec := models.RuleExecution{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		RuleID:     ruleID,
		DealID:     dealID,
		Executed:   true,
		Success:    true,
		ExecutedAt: time.Now(),
	}

	return db.Create(&exec).Error
}

// RecordExecution stamps identity and timestamps onto the record and
// appends it to the log. When the record documents an actual firing
// (Executed true) the rule's execution counter and last-triggered time are
// bumped in the same transaction; evaluations that did not fire leave the
// counters untouched.
func RecordExecution(db *gorm.DB, exec *models.RuleExecution) (*models.RuleExecution, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if exec == nil {
		return nil, ErrRuleNotFound
	}

	if exec.ID == "" {
		exec.ID = uuid.NewString()
	}
	if exec.ExecutedAt.IsZero() {
		exec.ExecutedAt = time.Now()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(exec); result.Error != nil {
			return result.Error
		}

		if !exec.Executed {
			return nil
		}

		return tx.Model(&models.PipelineRule{}).
			Where(ruleIDQuery, exec.TenantID, exec.RuleID).
			Updates(map[string]any{
				"execution_count":   gorm.Expr("execution_count + 1"),
				"last_triggered_at": exec.ExecutedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return exec, nil
}

// GetExecutions returns a rule's execution log, newest first.
func GetExecutions(db *gorm.DB, tenantID, ruleID string, limit int) ([]models.RuleExecution, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where("tenant_id = ? AND rule_id = ?", tenantID, ruleID).
		Order("executed_at DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var execs []models.RuleExecution
	if result := query.Find(&execs); result.Error != nil {
		return nil, result.Error
	}

	return execs, nil
}

// GetExecutionSummary aggregates a rule's execution log over the inclusive
// [periodStart, periodEnd] window.
func GetExecutionSummary(db *gorm.DB, tenantID, ruleID string, periodStart, periodEnd time.Time) (*models.RuleExecutionSummary, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var execs []models.RuleExecution
	result := db.Where("tenant_id = ? AND rule_id = ?", tenantID, ruleID).
		Where("executed_at >= ? AND executed_at <= ?", periodStart, periodEnd).
		Order("executed_at DESC, created_at DESC").
		Find(&execs)
	if result.Error != nil {
		return nil, result.Error
	}

	summary := models.RuleExecutionSummary{
		RuleID:      ruleID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	var (
		timedTotal int64
		timedCount int64
		deals      = make(map[string]struct{})
	)

	for i := range execs {
		e := &execs[i]
		summary.TotalExecutions++

		if e.Success {
			summary.SuccessfulExecutions++
		} else {
			summary.FailedExecutions++
		}

		if e.ExecutionTimeMs != nil {
			timedTotal += *e.ExecutionTimeMs
			timedCount++
		}

		deals[e.DealID] = struct{}{}
	}

	if timedCount > 0 {
		summary.AverageExecutionTimeMs = float64(timedTotal) / float64(timedCount)
	}

	summary.DealsAffected = int64(len(deals))

	// Executions are sorted newest first, so the first entry carries the
	// most recent execution time in the window.
	if len(execs) > 0 {
		summary.LastExecutionAt = &execs[0].ExecutedAt
	}

	return &summary, nil
}
