// Package organisation provides the JSON API for dealer organisations and
// their contacts.
package organisation

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	orgcontroller "github.com/importdesk/importdesk/internal/db/controller/organisation"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
	authmw "github.com/importdesk/importdesk/internal/web/middleware/auth"
)

const (
	// Path is the base path for organisations.
	Path = handler.APIPath + "/organisations"

	// RouteOrganisation addresses a single organisation.
	RouteOrganisation = Path + "/:id"
	// RouteContacts lists and creates the contacts of one organisation.
	RouteContacts = RouteOrganisation + "/contacts"

	// ErrInvalidPayload is returned for undecodable request bodies.
	ErrInvalidPayload = "invalid request payload"
	// ErrOrganisationNotFoundMsg is returned when an organisation does not exist.
	ErrOrganisationNotFoundMsg = "organisation not found"
)

// CreateRequest is the payload for creating an organisation.
type CreateRequest struct {
	Name      string `json:"name" validate:"required"`
	Country   string `json:"country" validate:"omitempty,len=2"`
	VATNumber string `json:"vatNumber"`
	OwnerID   string `json:"ownerId"`
}

// CreateContactRequest is the payload for creating a contact.
type CreateContactRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// Service provides the organisation endpoints.
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

	readOrg := authmw.RequireEntityPermission(authSvc, rbac.EntityOrganisations, rbac.ActionRead)
	createOrg := authmw.RequireEntityPermission(authSvc, rbac.EntityOrganisations, rbac.ActionCreate)
	readContacts := authmw.RequireEntityPermission(authSvc, rbac.EntityContacts, rbac.ActionRead)
	createContact := authmw.RequireEntityPermission(authSvc, rbac.EntityContacts, rbac.ActionCreate)

	app.Get(Path, readOrg, s.List)
	app.Post(Path, createOrg, s.Create)
	app.Get(RouteOrganisation, readOrg, s.Get)
	app.Get(RouteContacts, readContacts, s.ListContacts)
	app.Post(RouteContacts, createContact, s.CreateContact)
}

// List returns the tenant's organisations.
func (s *Service) List(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	orgs, err := orgcontroller.GetAll(s.db, u.TenantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list organisations")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to list organisations"})
	}

	return c.JSON(orgs)
}

// Get returns a single organisation.
func (s *Service) Get(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	o, err := orgcontroller.Get(s.db, u.TenantID, c.Params("id"))
	if err != nil {
		if errors.Is(err, orgcontroller.ErrOrganisationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrOrganisationNotFoundMsg})
		}

		log.Error().Err(err).Msg("failed to load organisation")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load organisation"})
	}

	return c.JSON(o)
}

// Create inserts an organisation. The creating user becomes the owner
// unless the payload names one.
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

	o := models.Organisation{
		TenantID:  u.TenantID,
		Name:      req.Name,
		Country:   req.Country,
		VATNumber: req.VATNumber,
		OwnerID:   owner,
	}

	created, err := orgcontroller.Create(s.db, &o)
	if err != nil {
		log.Error().Err(err).Msg("failed to create organisation")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to create organisation"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListContacts returns the contacts of one organisation.
func (s *Service) ListContacts(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	if _, err := orgcontroller.Get(s.db, u.TenantID, c.Params("id")); err != nil {
		if errors.Is(err, orgcontroller.ErrOrganisationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrOrganisationNotFoundMsg})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load organisation"})
	}

	contacts, err := orgcontroller.GetContacts(s.db, u.TenantID, c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list contacts")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to list contacts"})
	}

	return c.JSON(contacts)
}

// CreateContact inserts a contact under an organisation.
func (s *Service) CreateContact(c *fiber.Ctx) error {
	u := authmw.CurrentUser(c)

	var req CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrInvalidPayload})
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: err.Error()})
	}

	contact := models.Contact{
		TenantID:       u.TenantID,
		OrganisationID: c.Params("id"),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		OwnerID:        u.ID,
	}

	created, err := orgcontroller.CreateContact(s.db, &contact)
	if err != nil {
		if errors.Is(err, orgcontroller.ErrOrganisationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: ErrOrganisationNotFoundMsg})
		}

		log.Error().Err(err).Msg("failed to create contact")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to create contact"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
