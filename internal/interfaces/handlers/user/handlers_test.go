package user

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	usersvc "charity-fund/internal/application/user"
	"charity-fund/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Handlers, *usersvc.Service) {
	db, err := database.OpenMigrated("sqlite://:memory:")
	require.NoError(t, err)
	svc := &usersvc.Service{DB: db}
	return &Handlers{Service: svc}, svc
}

func appAs(h *Handlers, userID string, superuser bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": userID, "is_superuser": superuser})
		return c.Next()
	})
	app.Get("/users/:user_id", h.ViewUser)
	return app
}

func TestViewUser(t *testing.T) {
	h, svc := setup(t)
	u, err := svc.Register(context.Background(), usersvc.RegisterInput{Email: "donor@example.com", Password: "s3cret"})
	require.NoError(t, err)

	resp, err := appAs(h, u.UserID.String(), false).Test(httptest.NewRequest("GET", "/users/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "password")
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "donor@example.com", body["data"].(map[string]interface{})["user"].(map[string]interface{})["email"])

	resp, err = appAs(h, uuid.NewString(), false).Test(httptest.NewRequest("GET", "/users/"+u.UserID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = appAs(h, uuid.NewString(), true).Test(httptest.NewRequest("GET", "/users/"+u.UserID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = appAs(h, uuid.NewString(), true).Test(httptest.NewRequest("GET", "/users/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
