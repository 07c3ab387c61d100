// Package rule provides the repository for pipeline automation rules and
// their execution log.
package rule

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/db/models"
)

const (
	tenantIDQuery     = "tenant_id = ?"
	ruleIDQuery       = "tenant_id = ? AND id = ?"
	priorityOrder     = "priority ASC, created_at ASC, id ASC"
	scopedOrGlobal    = "(pipeline_id = ? OR is_global = ?)"
	executionKeyQuery = "tenant_id = ? AND rule_id = ? AND deal_id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRuleNotFound is returned when a rule does not exist.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrRuleNil is returned when Create is handed a nil rule.
	ErrRuleNil = errors.New("rule is nil")
	// ErrSystemRuleProtected is returned when attempting to delete a
	// system rule.
	ErrSystemRuleProtected = errors.New("system rules cannot be deleted")
	// ErrInvalidScope is returned when a rule is neither pipeline-scoped
	// nor global, or both at once.
	ErrInvalidScope = errors.New("rule must have exactly one of pipeline id or global scope")
)

// Create inserts a new rule. The scope invariant is enforced here: exactly
// one of PipelineID and IsGlobal must be set. A missing id is generated.
func Create(db *gorm.DB, r *models.PipelineRule) (*models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if r == nil {
		return nil, ErrRuleNil
	}

	if (r.PipelineID == "") == !r.IsGlobal {
		return nil, ErrInvalidScope
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	if result := db.Create(r); result.Error != nil {
		return nil, result.Error
	}

	return r, nil
}

// Get retrieves a rule by id within a tenant.
func Get(db *gorm.DB, tenantID, id string) (*models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.PipelineRule
	result := db.Where(ruleIDQuery, tenantID, id).First(&r)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, result.Error
	}

	return &r, nil
}

// GetByPipeline retrieves the non-global rules scoped to one pipeline,
// ordered by ascending priority.
func GetByPipeline(db *gorm.DB, tenantID, pipelineID string) ([]models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rules []models.PipelineRule
	result := db.Where(tenantIDQuery, tenantID).
		Where("pipeline_id = ? AND is_global = ?", pipelineID, false).
		Order(priorityOrder).
		Find(&rules)
	if result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// GetGlobalRules retrieves the rules applicable across all pipelines,
// ordered by ascending priority.
func GetGlobalRules(db *gorm.DB, tenantID string) ([]models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rules []models.PipelineRule
	result := db.Where(tenantIDQuery, tenantID).
		Where("is_global = ?", true).
		Order(priorityOrder).
		Find(&rules)
	if result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// GetActiveRules retrieves active rules ordered by ascending priority.
// With a pipeline id it returns both that pipeline's rules and global
// rules; with an empty pipeline id it returns every active rule.
func GetActiveRules(db *gorm.DB, tenantID, pipelineID string) ([]models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where(tenantIDQuery, tenantID).Where("is_active = ?", true)
	if pipelineID != "" {
		query = query.Where(scopedOrGlobal, pipelineID, true)
	}

	var rules []models.PipelineRule
	if result := query.Order(priorityOrder).Find(&rules); result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// GetByTrigger retrieves the active rules reacting to one trigger, scoped
// the same way as GetActiveRules, ordered by ascending priority.
func GetByTrigger(db *gorm.DB, tenantID string, trigger models.RuleTrigger, pipelineID string) ([]models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where(tenantIDQuery, tenantID).
		Where("is_active = ?", true).
		Where("trigger_event = ?", trigger)
	if pipelineID != "" {
		query = query.Where(scopedOrGlobal, pipelineID, true)
	}

	var rules []models.PipelineRule
	if result := query.Order(priorityOrder).Find(&rules); result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// GetSystemRules retrieves the platform-seeded rules.
func GetSystemRules(db *gorm.DB, tenantID string) ([]models.PipelineRule, error) {
	return getByFlag(db, tenantID, "is_system")
}

// GetMigratedRules retrieves the rules that replaced hardcoded logic.
func GetMigratedRules(db *gorm.DB, tenantID string) ([]models.PipelineRule, error) {
	return getByFlag(db, tenantID, "is_migrated")
}

func getByFlag(db *gorm.DB, tenantID, column string) ([]models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rules []models.PipelineRule
	result := db.Where(tenantIDQuery, tenantID).
		Where(column+" = ?", true).
		Order(priorityOrder).
		Find(&rules)
	if result.Error != nil {
		return nil, result.Error
	}

	return rules, nil
}

// Update applies a patch to a rule and returns the updated row.
func Update(db *gorm.DB, tenantID, id string, patch map[string]any) (*models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	result := db.Model(&models.PipelineRule{}).
		Where(ruleIDQuery, tenantID, id).
		Updates(patch)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRuleNotFound
	}

	return Get(db, tenantID, id)
}

// Activate enables a rule. Returns nil without error if the rule does not
// exist, so callers can distinguish "not found" from a database failure.
func Activate(db *gorm.DB, tenantID, id string) (*models.PipelineRule, error) {
	return setActive(db, tenantID, id, true)
}

// Deactivate disables a rule. Not-found behaves like Activate.
func Deactivate(db *gorm.DB, tenantID, id string) (*models.PipelineRule, error) {
	return setActive(db, tenantID, id, false)
}

func setActive(db *gorm.DB, tenantID, id string, active bool) (*models.PipelineRule, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	result := db.Model(&models.PipelineRule{}).
		Where(ruleIDQuery, tenantID, id).
		Update("is_active", active)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return Get(db, tenantID, id)
}

// Reorder assigns priority index+1 to each rule in the given order. Every
// id is attempted even after a miss; the returned bool is true only when
// every id resolved to an existing rule. Callers must not assume
// atomicity across ids.
func Reorder(db *gorm.DB, tenantID string, ruleIDs []string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	ok := true
	for i, id := range ruleIDs {
		result := db.Model(&models.PipelineRule{}).
			Where(ruleIDQuery, tenantID, id).
			Update("priority", i+1)
		if result.Error != nil {
			return false, result.Error
		}
		if result.RowsAffected == 0 {
			ok = false
		}
	}

	return ok, nil
}

// CanDelete reports whether a rule may be deleted. System rules and
// non-existent rules cannot.
func CanDelete(db *gorm.DB, tenantID, id string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	r, err := Get(db, tenantID, id)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			return false, nil
		}
		return false, err
	}

	return !r.IsSystem, nil
}

// Delete removes a rule. Deleting a system rule fails with
// ErrSystemRuleProtected; the error always propagates to the caller.
func Delete(db *gorm.DB, tenantID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := Get(db, tenantID, id)
	if err != nil {
		return err
	}
	if r.IsSystem {
		return ErrSystemRuleProtected
	}

	result := db.Where(ruleIDQuery, tenantID, id).Delete(&models.PipelineRule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}
