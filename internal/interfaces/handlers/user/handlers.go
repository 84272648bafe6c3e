package user

import (
	"errors"

	usersvc "charity-fund/internal/application/user"
	"charity-fund/internal/middleware"
	"charity-fund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *usersvc.Service
}

// ViewUser GET /api/v1/users/:user_id. Users may view themselves; superusers anyone.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	target := c.Params("user_id")
	if target == "me" {
		target = actor.UserID.String()
	}
	if target != actor.UserID.String() && !actor.IsSuperuser {
		return response.Forbidden(c)
	}
	u, err := h.Service.ViewUser(c.Context(), target)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "User fetched successfully", fiber.Map{"user": u}, nil)
}
