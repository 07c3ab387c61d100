// Package access provides the permission-check endpoint exposed to the
// surrounding application.
package access

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	"github.com/importdesk/importdesk/internal/config"
	usercontroller "github.com/importdesk/importdesk/internal/db/controller/user"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
)

const (
	// Path is the permission-check endpoint.
	Path = handler.APIPath + "/access/check"
)

// CheckRequest asks whether a user may perform an action on an entity type,
// optionally against a concrete instance.
type CheckRequest struct {
	UserID     string          `json:"userId" validate:"required"`
	EntityType rbac.EntityType `json:"entityType" validate:"required"`
	Action     rbac.Action     `json:"action" validate:"required,oneof=create read update delete"`
	EntityID   string          `json:"entityId"`
	OwnerID    string          `json:"entityOwnerId"`
}

// CheckResponse is the boolean decision.
type CheckResponse struct {
	Allowed bool `json:"allowed"`
}

// Service provides the access-check endpoint.
type Service struct {
	cfg       *config.Config
	authSvc   *authservice.Service
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
	s.authSvc = authSvc
	s.validator = validator.New()

	app.Post(Path, s.Check)
}

// Check answers the permission question for the given user and entity. An
// unknown role is a configuration error and answers 400; a plain denial is
// a normal allowed=false response.
func (s *Service) Check(c *fiber.Ctx) error {
	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "invalid request payload"})
	}

	if err := s.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "validation failed: " + err.Error()})
	}

	allowed, err := s.authSvc.CanAccess(req.UserID, req.EntityType, req.Action, req.EntityID, req.OwnerID)
	if err != nil {
		var unknownRole *rbac.UnknownRoleError
		if errors.As(err, &unknownRole) {
			return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: unknownRole.Error()})
		}

		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.ErrorResponse{Error: "user not found"})
		}

		log.Error().Err(err).Str("user_id", req.UserID).Msg("access check failed")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(CheckResponse{Allowed: allowed})
}
