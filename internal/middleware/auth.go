package middleware

import (
	"charity-fund/internal/pkg/constants"
	"charity-fund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth answers 401 unless the session carries a user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentActor(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Actor is the session user in typed form.
type Actor struct {
	UserID      uuid.UUID
	Email       string
	Role        string
	IsSuperuser bool
}

func CurrentActor(c *fiber.Ctx) (*Actor, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return nil, false
	}
	raw, _ := m["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	isSuper, _ := m["is_superuser"].(bool)
	role, _ := m["role"].(string)
	if role == "" {
		role = constants.RoleOf(isSuper)
	}
	email, _ := m["email"].(string)
	return &Actor{UserID: id, Email: email, Role: role, IsSuperuser: isSuper}, true
}
