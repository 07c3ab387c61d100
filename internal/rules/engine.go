package rules

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	rulecontroller "github.com/importdesk/importdesk/internal/db/controller/rule"
	"github.com/importdesk/importdesk/internal/db/models"
)

// Result reports the outcome of one rule evaluated during a dispatch.
type Result struct {
	RuleID   string
	Matched  bool
	Executed bool
	Success  bool
	Err      error
}

// Engine evaluates pipeline automation rules against deal events.
type Engine struct {
	db        *gorm.DB
	notifier  Notifier
	executors map[models.RuleActionType]ActionExecutor

	// locks serializes the gate-check/run/record section per
	// (rule, deal) pair, closing the cooldown and execute-once TOCTOU
	// window between concurrent dispatches in this process. Entries are
	// refcounted and evicted once the last holder unlocks.
	locksMu sync.Mutex
	locks   map[string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a rule engine over the given database. A nil notifier falls
// back to the log-based one.
func New(db *gorm.DB, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = LogNotifier{}
	}

	e := &Engine{
		db:       db,
		notifier: notifier,
		locks:    make(map[string]*pairLock),
	}
	e.executors = e.defaultExecutors()

	return e
}

// Register adds or replaces the executor for an action kind. New kinds can
// be plugged in without touching the dispatcher.
func (e *Engine) Register(kind models.RuleActionType, exec ActionExecutor) {
	e.executors[kind] = exec
}

// Dispatch evaluates all rules registered for the trigger in the deal's
// pipeline, including global ones, in ascending priority order. Each
// matching rule is gated on cooldown/execute-once state, its actions run
// in order, and an execution record is appended. A failing rule never
// aborts the remaining rules.
func (e *Engine) Dispatch(ctx context.Context, trigger models.RuleTrigger, deal *models.Deal) []Result {
	rules, err := rulecontroller.GetByTrigger(e.db, deal.TenantID, trigger, deal.PipelineID)
	if err != nil {
		log.Error().Err(err).
			Str("trigger", string(trigger)).
			Str("deal_id", deal.ID).
			Msg("failed to load rules for trigger")

		return nil
	}

	results := make([]Result, 0, len(rules))
	for i := range rules {
		results = append(results, e.evaluateRule(ctx, &rules[i], deal))
	}

	return results
}

// evaluateRule runs one rule against one deal.
func (e *Engine) evaluateRule(ctx context.Context, rule *models.PipelineRule, deal *models.Deal) Result {
	result := Result{RuleID: rule.ID}

	matched, err := EvaluateConditions(rule.Conditions, deal)
	if err != nil {
		// Unknown fields and operators fail closed rather than crashing
		// the dispatch.
		log.Warn().Err(err).
			Str("rule_id", rule.ID).
			Str("deal_id", deal.ID).
			Msg("condition evaluation failed, rule skipped")

		result.Err = err

		return result
	}
	if !matched {
		return result
	}

	result.Matched = true

	unlock := e.lock(rule.ID, deal.ID)
	defer unlock()

	allowed, err := rulecontroller.CanExecute(e.db, deal.TenantID, rule.ID, deal.ID)
	if err != nil {
		log.Error().Err(err).Str("rule_id", rule.ID).Msg("execution gate check failed")
		result.Err = err

		return result
	}
	if !allowed {
		// Evaluated but gated off: recorded with executed false so the
		// trail distinguishes "didn't fire" from "fired".
		e.record(rule, deal, false, false, nil, "")

		return result
	}

	start := time.Now()
	runErr := e.runActions(ctx, rule, deal)
	elapsed := time.Since(start).Milliseconds()

	result.Executed = true
	result.Success = runErr == nil
	result.Err = runErr

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	e.record(rule, deal, true, runErr == nil, &elapsed, errMsg)

	return result
}

// runActions executes the rule's actions in ascending order. An unknown
// action type is a logged no-op; the first executor error stops the rule's
// remaining actions.
func (e *Engine) runActions(ctx context.Context, rule *models.PipelineRule, deal *models.Deal) error {
	actions := make([]models.RuleAction, len(rule.Actions))
	copy(actions, rule.Actions)

	for i := 1; i < len(actions); i++ {
		for j := i; j > 0 && actions[j].Order < actions[j-1].Order; j-- {
			actions[j], actions[j-1] = actions[j-1], actions[j]
		}
	}

	for _, action := range actions {
		exec, ok := e.executors[action.Type]
		if !ok {
			log.Warn().
				Str("rule_id", rule.ID).
				Str("action_type", string(action.Type)).
				Msg("no executor registered for action type, skipped")

			continue
		}

		// TODO: honor action.Delay once the scheduled job runner lands;
		// delayed actions currently run inline.
		if err := exec(ctx, deal, action.Parameters); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) record(rule *models.PipelineRule, deal *models.Deal, executed, success bool, timeMs *int64, errMsg string) {
	_, err := rulecontroller.RecordExecution(e.db, &models.RuleExecution{
		TenantID:        deal.TenantID,
		RuleID:          rule.ID,
		DealID:          deal.ID,
		Executed:        executed,
		Success:         success,
		ExecutionTimeMs: timeMs,
		ErrorMessage:    errMsg,
	})
	if err != nil {
		log.Error().Err(err).
			Str("rule_id", rule.ID).
			Str("deal_id", deal.ID).
			Msg("failed to record rule execution")
	}
}

// lock acquires the per-(rule, deal) mutex and returns its unlock func.
// The unlock func drops the map entry when no other goroutine holds or
// waits on it, so the map does not grow with every pair ever dispatched.
func (e *Engine) lock(ruleID, dealID string) func() {
	key := ruleID + "\x00" + dealID

	e.locksMu.Lock()
	pl, ok := e.locks[key]
	if !ok {
		pl = &pairLock{}
		e.locks[key] = pl
	}
	pl.refs++
	e.locksMu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		e.locksMu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(e.locks, key)
		}
		e.locksMu.Unlock()
	}
}

// SweepInactiveDeals evaluates every inactivity rule against the open
// deals whose last activity is older than that rule's own threshold
// (trigger config key "inactiveDays"). Each rule sees only the deals past
// its own cutoff, so a 30-day rule never fires for a deal that is merely
// 15 days quiet, and a deal past several thresholds fires each rule once.
// Intended to be run periodically by the daemon.
func (e *Engine) SweepInactiveDeals(ctx context.Context, tenantID string) int {
	rules, err := rulecontroller.GetByTrigger(e.db, tenantID, models.TriggerDealInactive, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to load inactivity rules")
		return 0
	}

	dispatched := 0
	for i := range rules {
		rule := &rules[i]

		days, ok := toFloat(rule.TriggerConfig["inactiveDays"])
		if !ok || days <= 0 {
			log.Warn().Str("rule_id", rule.ID).Msg("inactivity rule without a valid inactiveDays config, skipped")

			continue
		}

		cutoff := time.Now().Add(-time.Duration(days*24) * time.Hour)

		query := e.db.Where("tenant_id = ? AND status = ?", tenantID, models.DealStatusOpen).
			Where("last_activity_at IS NOT NULL AND last_activity_at < ?", cutoff)
		if !rule.IsGlobal {
			query = query.Where("pipeline_id = ?", rule.PipelineID)
		}

		var deals []models.Deal
		if err := query.Find(&deals).Error; err != nil {
			log.Error().Err(err).Str("rule_id", rule.ID).Msg("failed to find inactive deals")

			continue
		}

		for j := range deals {
			e.evaluateRule(ctx, rule, &deals[j])
			dispatched++
		}
	}

	return dispatched
}
