// Package lead provides the JSON API for unqualified prospects.
package lead

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	leadcontroller "github.com/importdesk/importdesk/internal/db/controller/lead"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

const (
	// Path is the base path for leads.
	Path = handler.APIPath + "/leads"

	// RouteLead addresses a single lead.
	RouteLead = Path + "/:id"

	// ErrInvalidPayload is returned for undecodable request bodies.
	ErrInvalidPayload = "invalid request payload"
	// ErrLeadNotFoundMsg is returned when a lead does not exist.
	ErrLeadNotFoundMsg = "lead not found"
)

// CreateRequest is the payload for creating a lead.
type CreateRequest struct {
	Name    string `json:"name" validate:"required"`
	Source  string `json:"source"`
	OwnerID string `json:"ownerId"`
}

// Service provides the lead endpoints.
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

	read := authmw.RequireEntityPermission(authSvc, rbac.EntityLeads, rbac.ActionRead)
	create := authmw.RequireEntityPermission(authSvc, rbac.EntityLeads, rbac.ActionCreate)

	app.Get(Path, read, s.List)
	app.Post(Path, create, s.Create)
	app.Get(RouteLead, read, s.Get)
}

// List returns the tenant's leads.
func (s *Service) List(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	leads, err := leadcontroller.GetAll(s.db, u.TenantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list leads")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to list leads"})
	}

	return c.JSON(leads)
}

// Get returns a single lead.
func (s *Service) Get(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	l, err := leadcontroller.Get(s.db, u.TenantID, c.Params("id"))
	if err != nil {
		if errors.Is(err, leadcontroller.ErrLeadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrLeadNotFoundMsg})
		}

		log.Error().Err(err).Msg("failed to load lead")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load lead"})
	}

	return c.JSON(l)
}

// Create inserts a lead. The creating user becomes the owner unless the
// payload names one.
func (s *Service) Create(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrInvalidPayload})
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: err.Error()})
	}

	owner := req.OwnerID
	if owner == "" {
		owner = u.ID
	}

	l := models.Lead{
		TenantID: u.TenantID,
		Name:     req.Name,
		Source:   req.Source,
		OwnerID:  owner,
	}

	created, err := leadcontroller.Create(s.db, &l)
	if err != nil {
		log.Error().Err(err).Msg("failed to create lead")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to create lead"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
