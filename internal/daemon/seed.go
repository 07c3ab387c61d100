package daemon

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	pipelinecontroller "github.com/importdesk/importdesk/internal/db/controller/pipeline"
	rulecontroller "github.com/importdesk/importdesk/internal/db/controller/rule"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
)

// DefaultTenantID is the tenant seeded on first start.
const DefaultTenantID = "tenant-default"

// SkippedRule documents one default rule that was not created and why.
type SkippedRule struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// SeedReport is the structured outcome of a seeding run, so callers and
// tests can assert on results instead of parsing log output.
type SeedReport struct {
	Created []string      `json:"created"`
	Skipped []SkippedRule `json:"skipped"`
}

// defaultRule is a seed template. Pipeline references are by name and get
// resolved to ids at seed time.
type defaultRule struct {
	id              string
	pipelineName    string // empty for global rules
	trigger         models.RuleTrigger
	triggerConfig   map[string]any
	conditions      []models.RuleCondition
	actions         []models.RuleAction
	priority        int
	executeOnce     bool
	cooldownMinutes int
}

// defaultRules are the platform rules, tagged system and migrated: each
// one replaced business logic that used to be hardcoded in the dashboard.
var defaultRules = []defaultRule{
	{
		id:           "rule-dealer-won-spawn-integration",
		pipelineName: "Dealer Acquisition",
		trigger:      models.TriggerDealMarkedWon,
		actions: []models.RuleAction{
			{
				Type:  models.ActionSpawnInPipeline,
				Order: 1,
				Parameters: map[string]any{
					"pipelineName": "Dealer Integration",
					"titlePrefix":  "Integration: ",
					"copyValue":    true,
				},
			},
			{
				Type:  models.ActionSendNotification,
				Order: 2,
				Parameters: map[string]any{
					"channel": "deals",
					"message": "Dealer won, integration deal created",
				},
			},
		},
		priority:    10,
		executeOnce: true,
	},
	{
		id:      "rule-lost-reason-required",
		trigger: models.TriggerDealMarkedLost,
		actions: []models.RuleAction{
			{Type: models.ActionRequireLostReason, Order: 1},
		},
		priority: 10,
	},
	{
		id:            "rule-deal-inactive-notify",
		trigger:       models.TriggerDealInactive,
		triggerConfig: map[string]any{"inactiveDays": 14},
		actions: []models.RuleAction{
			{
				Type:  models.ActionSendNotification,
				Order: 1,
				Parameters: map[string]any{
					"channel": "deals",
					"message": "Deal has been inactive for two weeks",
				},
			},
		},
		priority:        20,
		cooldownMinutes: 60 * 24,
	},
}

// SeedDefaultRules creates the platform rules for a tenant. Rules whose
// referenced pipeline does not exist yet are skipped with a reason rather
// than failing the seed, and rules whose id already exists are skipped, so
// the function is idempotent.
func SeedDefaultRules(db *gorm.DB, tenantID string) (*SeedReport, error) {
	if db == nil {
		return nil, rulecontroller.ErrDBNil
	}

	report := &SeedReport{}

	for _, tpl := range defaultRules {
		if _, err := rulecontroller.Get(db, tenantID, tpl.id); err == nil {
			report.Skipped = append(report.Skipped, SkippedRule{ID: tpl.id, Reason: "already exists"})

			continue
		} else if !errors.Is(err, rulecontroller.ErrRuleNotFound) {
			return report, err
		}

		r := models.PipelineRule{
			ID:              tpl.id,
			TenantID:        tenantID,
			Trigger:         tpl.trigger,
			TriggerConfig:   tpl.triggerConfig,
			Conditions:      tpl.conditions,
			Actions:         tpl.actions,
			IsActive:        true,
			Priority:        tpl.priority,
			ExecuteOnce:     tpl.executeOnce,
			CooldownMinutes: tpl.cooldownMinutes,
			IsSystem:        true,
			IsMigrated:      true,
			IsGlobal:        tpl.pipelineName == "",
		}

		if tpl.pipelineName != "" {
			p, err := pipelinecontroller.GetByName(db, tenantID, tpl.pipelineName)
			if err != nil {
				if errors.Is(err, pipelinecontroller.ErrPipelineNotFound) {
					reason := fmt.Sprintf("pipeline %q not found", tpl.pipelineName)
					log.Warn().Str("rule_id", tpl.id).Msg("seed: " + reason)
					report.Skipped = append(report.Skipped, SkippedRule{ID: tpl.id, Reason: reason})

					continue
				}

				return report, err
			}

			r.PipelineID = p.ID
		}

		if _, err := rulecontroller.Create(db, &r); err != nil {
			return report, fmt.Errorf("seed rule %s: %w", tpl.id, err)
		}

		report.Created = append(report.Created, tpl.id)
	}

	return report, nil
}

// defaultPipelines seeded on first start.
var defaultPipelines = []models.Pipeline{
	{
		Name: "Dealer Acquisition",
		Stages: []models.PipelineStage{
			{ID: "da-contact", Name: "First Contact", Order: 1},
			{ID: "da-negotiation", Name: "Negotiation", Order: 2},
			{ID: "da-contract", Name: "Contract", Order: 3},
		},
		IsDefault: true,
	},
	{
		Name: "Dealer Integration",
		Stages: []models.PipelineStage{
			{ID: "di-onboarding", Name: "Onboarding", Order: 1},
			{ID: "di-systems", Name: "Systems Setup", Order: 2},
			{ID: "di-live", Name: "Live", Order: 3},
		},
	},
	{
		Name: "Vehicle Sales",
		Stages: []models.PipelineStage{
			{ID: "vs-intake", Name: "Intake", Order: 1},
			{ID: "vs-title", Name: "Title & Customs", Order: 2},
			{ID: "vs-invoice", Name: "Invoiced", Order: 3},
		},
	},
}

// seed provisions the default tenant on an empty database: pipelines, the
// admin account and the platform rules.
func seed(db *gorm.DB) {
	var count int64

	db.Model(&models.Pipeline{}).Count(&count)
	if count == 0 {
		for i := range defaultPipelines {
			p := defaultPipelines[i]
			p.TenantID = DefaultTenantID

			if _, err := pipelinecontroller.Create(db, &p); err != nil {
				log.Error().Err(err).Str("pipeline", p.Name).Msg("failed to seed pipeline")
			}
		}
	}

	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		db.Create(&models.User{
			ID:       "user-admin",
			TenantID: DefaultTenantID,
			Username: "admin",
			Active:   true,
			Role:     rbac.RoleAdmin,
		})
	}

	report, err := SeedDefaultRules(db, DefaultTenantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to seed default rules")
		return
	}

	log.Info().
		Strs("created", report.Created).
		Int("skipped", len(report.Skipped)).
		Msg("default rules seeded")
}
