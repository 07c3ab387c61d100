// Package auth provides the identity and entity-permission middleware for
// the JSON API.
package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authservice "github.com/importdesk/importdesk/internal/auth"
	usercontroller "github.com/importdesk/importdesk/internal/db/controller/user"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rbac"
	"github.com/importdesk/importdesk/internal/web/handler"
)

// HeaderUserID carries the authenticated principal. Session handling lives
// in front of this service; the API trusts the header set by it.
const HeaderUserID = "X-User-ID"

// Principal loads the requesting user into fiber locals. Requests without
// a resolvable user are rejected with 401.
func Principal(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: "missing user identity"})
		}

		u, err := usercontroller.Get(db, userID)
		if err != nil {
			if errors.Is(err, usercontroller.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: "unknown user"})
			}

			log.Error().Err(err).Str("user_id", userID).Msg("failed to load principal")

			return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "internal error"})
		}

		if !u.Active {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: "account disabled"})
		}

		c.Locals(handler.LocalCurrentUser, u)

		return c.Next()
	}
}

// CurrentUser returns the principal stored by the Principal middleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(handler.LocalCurrentUser).(*models.User)
	return u
}

// RequireEntityPermission creates fiber middleware denying requests whose
// principal may not perform action on the entity type. The ":id" route
// parameter, when present, is passed as the instance id so assignment
// scoping applies.
func RequireEntityPermission(svc *authservice.Service, entity rbac.EntityType, action rbac.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: "missing user identity"})
		}

		allowed, err := svc.CanAccess(u.ID, entity, action, c.Params("id"), "")
		if err != nil {
			log.Error().Err(err).
				Str("user_id", u.ID).
				Str("entity", string(entity)).
				Str("action", string(action)).
				Msg("permission check failed")

			return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "internal error"})
		}

		if !allowed {
			log.Warn().
				Str("user_id", u.ID).
				Str("entity", string(entity)).
				Str("action", string(action)).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(handler.ErrorResponse{Error: "not authorized"})
		}

		return c.Next()
	}
}
