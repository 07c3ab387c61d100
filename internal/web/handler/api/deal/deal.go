// Package deal provides the deal lifecycle endpoints that feed the rule
// engine.
package deal

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/rules"
	"github.com/importdesk/importdesk/internal/web/handler"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

const (
	// Path is the base path for deals.
	Path = handler.APIPath + "/deals"

	// RouteWon marks a deal as won and dispatches the trigger.
	RouteWon = Path + "/:id/won"
	// RouteLost marks a deal as lost and dispatches the trigger.
	RouteLost = Path + "/:id/lost"

	// ErrDealNotFoundMsg is returned when a deal does not exist.
	ErrDealNotFoundMsg = "deal not found"
)

// LostRequest carries the reason when marking a deal lost.
type LostRequest struct {
	LostReason string `json:"lostReason"`
}

// Service provides the deal lifecycle endpoints.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	engine    *rules.Engine
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authSvc *authservice.Service, engine *rules.Engine) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.engine = engine
	s.validator = validator.New()

	update := authmw.RequireEntityPermission(authSvc, rbac.EntityDeals, rbac.ActionUpdate)

	app.Post(RouteWon, update, s.Won)
	app.Post(RouteLost, update, s.Lost)
}

// Won marks a deal as won and dispatches DEAL_MARKED_WON.
func (s *Service) Won(c *fiber.Ctx) error {
	return s.transition(c, models.DealStatusWon, "")
}

// Lost marks a deal as lost and dispatches DEAL_MARKED_LOST.
func (s *Service) Lost(c *fiber.Ctx) error {
	var req LostRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "invalid request payload"})
		}
	}

	return s.transition(c, models.DealStatusLost, req.LostReason)
}

func (s *Service) transition(c *fiber.Ctx, status models.DealStatus, lostReason string) error {
	u := authmw.CurrentUser(c)

	var deal models.Deal
	err := s.db.Where("tenant_id = ? AND id = ?", u.TenantID, c.Params("id")).First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrDealNotFoundMsg})
		}

		log.Error().Err(err).Msg("failed to load deal")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load deal"})
	}

	now := time.Now()
	deal.Status = status
	deal.LostReason = lostReason
	deal.LastActivityAt = &now

	if err := s.db.Save(&deal).Error; err != nil {
		log.Error().Err(err).Msg("failed to update deal")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to update deal"})
	}

	trigger := models.TriggerDealMarkedWon
	if status == models.DealStatusLost {
		trigger = models.TriggerDealMarkedLost
	}

	results := s.engine.Dispatch(c.UserContext(), trigger, &deal)

	return c.JSON(fiber.Map{
		"deal":           deal,
		"rulesEvaluated": len(results),
	})
}
