// Package rule provides the JSON API for managing pipeline automation rules.
package rule

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	rulecontroller "github.com/importdesk/importdesk/internal/db/controller/rule"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

const (
	// Path is the base path for rule management.
	Path = handler.APIPath + "/rules"

	// RouteRule addresses a single rule.
	RouteRule = Path + "/:id"
	// RouteActivate enables a rule.
	RouteActivate = RouteRule + "/activate"
	// RouteDeactivate disables a rule.
	RouteDeactivate = RouteRule + "/deactivate"
	// RouteReorder reassigns priorities from an ordered id list.
	RouteReorder = Path + "/reorder"
	// RouteSummary aggregates a rule's execution log over a window.
	RouteSummary = RouteRule + "/summary"

	// QueryPipelineID filters rules by pipeline scope.
	QueryPipelineID = "pipelineId"
	// QueryTrigger filters rules by trigger.
	QueryTrigger = "trigger"

	// ErrInvalidPayload is returned for undecodable request bodies.
	ErrInvalidPayload = "invalid request payload"
	// ErrRuleNotFoundMsg is returned when a rule does not exist.
	ErrRuleNotFoundMsg = "rule not found"
	// ErrSystemRuleMsg is returned when deleting a protected system rule.
	ErrSystemRuleMsg = "system rules cannot be deleted"
	// ErrValidationPrefix prefixes validation error messages.
	ErrValidationPrefix = "validation failed: "
)

// CreateRequest is the payload for creating a rule.
type CreateRequest struct {
	PipelineID      string                 `json:"pipelineId"`
	IsGlobal        bool                   `json:"isGlobal"`
	Trigger         models.RuleTrigger     `json:"trigger" validate:"required"`
	TriggerConfig   map[string]any         `json:"triggerConfig"`
	Conditions      []models.RuleCondition `json:"conditions"`
	Actions         []models.RuleAction    `json:"actions" validate:"required,min=1"`
	Priority        int                    `json:"priority"`
	ExecuteOnce     bool                   `json:"executeOnce"`
	CooldownMinutes int                    `json:"cooldownMinutes" validate:"min=0"`
}

// ReorderRequest is the payload for reordering rules.
type ReorderRequest struct {
	RuleIDs []string `json:"ruleIds" validate:"required,min=1"`
}

// ReorderResponse reports whether every id resolved to an existing rule.
type ReorderResponse struct {
	OK bool `json:"ok"`
}

// Service provides the rule management endpoints.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authSvc *authservice.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	// Rule management is gated on the pipelines entity: reading rules
	// needs pipeline read, changing them needs pipeline update.
	read := authmw.RequireEntityPermission(authSvc, rbac.EntityPipelines, rbac.ActionRead)
	write := authmw.RequireEntityPermission(authSvc, rbac.EntityPipelines, rbac.ActionUpdate)

	app.Get(Path, read, s.List)
	app.Post(Path, write, s.Create)
	app.Post(RouteReorder, write, s.Reorder)
	app.Get(RouteRule, read, s.Get)
	app.Post(RouteActivate, write, s.Activate)
	app.Post(RouteDeactivate, write, s.Deactivate)
	app.Delete(RouteRule, write, s.Delete)
	app.Get(RouteSummary, read, s.Summary)
}

// List returns the tenant's rules, filtered by the optional pipelineId and
// trigger query parameters. Without filters every active rule is returned.
func (s *Service) List(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	var (
		rules []models.PipelineRule
		err   error
	)

	if trigger := c.Query(QueryTrigger); trigger != "" {
		rules, err = rulecontroller.GetByTrigger(s.db, u.TenantID, models.RuleTrigger(trigger), c.Query(QueryPipelineID))
	} else {
		rules, err = rulecontroller.GetActiveRules(s.db, u.TenantID, c.Query(QueryPipelineID))
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to list rules")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to list rules"})
	}

	return c.JSON(rules)
}

// Get returns a single rule.
func (s *Service) Get(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	r, err := rulecontroller.Get(s.db, u.TenantID, c.Params("id"))
	if err != nil {
		if errors.Is(err, rulecontroller.ErrRuleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrRuleNotFoundMsg})
		}

		log.Error().Err(err).Msg("failed to load rule")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load rule"})
	}

	return c.JSON(r)
}

// Create inserts a user-defined rule.
func (s *Service) Create(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrInvalidPayload})
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrValidationPrefix + err.Error()})
	}

	r := models.PipelineRule{
		TenantID:        u.TenantID,
		PipelineID:      req.PipelineID,
		IsGlobal:        req.IsGlobal,
		Trigger:         req.Trigger,
		TriggerConfig:   req.TriggerConfig,
		Conditions:      req.Conditions,
		Actions:         req.Actions,
		IsActive:        true,
		Priority:        req.Priority,
		ExecuteOnce:     req.ExecuteOnce,
		CooldownMinutes: req.CooldownMinutes,
	}

	created, err := rulecontroller.Create(s.db, &r)
	if err != nil {
		if errors.Is(err, rulecontroller.ErrInvalidScope) {
			return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: err.Error()})
		}

		log.Error().Err(err).Msg("failed to create rule")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to create rule"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Activate enables a rule.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setActive(c, true)
}

// Deactivate disables a rule.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setActive(c, false)
}

func (s *Service) setActive(c *fiber.Ctx, active bool) error {
	u := authmw.CurrentUser(c)

	var (
		r   *models.PipelineRule
		err error
	)

	if active {
		r, err = rulecontroller.Activate(s.db, u.TenantID, c.Params("id"))
	} else {
		r, err = rulecontroller.Deactivate(s.db, u.TenantID, c.Params("id"))
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to toggle rule")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to toggle rule"})
	}
	if r == nil {
		return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrRuleNotFoundMsg})
	}

	return c.JSON(r)
}

// Reorder assigns priorities from the ordered id list in the payload.
func (s *Service) Reorder(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrInvalidPayload})
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrValidationPrefix + err.Error()})
	}

	ok, err := rulecontroller.Reorder(s.db, u.TenantID, req.RuleIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to reorder rules")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to reorder rules"})
	}

	return c.JSON(ReorderResponse{OK: ok})
}

// Delete removes a rule. System rules are protected and answer 409.
func (s *Service) Delete(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	err := rulecontroller.Delete(s.db, u.TenantID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, rulecontroller.ErrRuleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrRuleNotFoundMsg})
		case errors.Is(err, rulecontroller.ErrSystemRuleProtected):
			return c.Status(fiber.StatusConflict).JSON(handler.ErrorResponse{Error: ErrSystemRuleMsg})
		default:
			log.Error().Err(err).Msg("failed to delete rule")

			return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to delete rule"})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Summary aggregates a rule's execution log over the from/to query window.
// The window defaults to the last 30 days.
func (s *Service) Summary(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "invalid from timestamp"})
		}
		from = parsed
	}

	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "invalid to timestamp"})
		}
		to = parsed
	}

	if _, err := rulecontroller.Get(s.db, u.TenantID, c.Params("id")); err != nil {
		if errors.Is(err, rulecontroller.ErrRuleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrRuleNotFoundMsg})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load rule"})
	}

	summary, err := rulecontroller.GetExecutionSummary(s.db, u.TenantID, c.Params("id"), from, to)
	if err != nil {
		log.Error().Err(err).Msg("failed to build execution summary")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to build summary"})
	}

	return c.JSON(summary)
}
