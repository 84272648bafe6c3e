package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "charity-fund/internal/application/auth"
	usersvc "charity-fund/internal/application/user"
	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/database"
	"charity-fund/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(_ context.Context, email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "password123" {
		return f.user, nil
	}
	if f.user != nil && f.user.Email == email {
		return nil, authsvc.ErrIncorrectPassword
	}
	return nil, authsvc.ErrInvalidEmail
}

func setupAuthHandlers(t *testing.T, finder authsvc.UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db, err := database.OpenMigrated("sqlite://:memory:")
	require.NoError(t, err)
	h := &Handlers{
		UserFinder: finder,
		Users:      &usersvc.Service{DB: db},
		Rdb:        rdb,
		Config:     middleware.SessionConfig{Secret: "test-secret"},
	}
	return h, rdb
}

func newApp(h *Handlers) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Session(h.Config, h.Rdb))
	app.Post("/login", h.Login)
	app.Post("/register", h.Register)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	app.Delete("/sessions", h.LogoutAll)
	return app
}

func postJSON(path string, body interface{}) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := newApp(h)

	resp, err := app.Test(postJSON("/login", map[string]string{"email": "a@b.com"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Email: "donor@example.com"}
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: u})
	app := newApp(h)

	resp, err := app.Test(postJSON("/login", LoginRequest{Email: u.Email, Password: "nope"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_Inactive(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{err: authsvc.ErrInactiveUser})
	app := newApp(h)

	resp, err := app.Test(postJSON("/login", LoginRequest{Email: "x@example.com", Password: "password123"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLogin_MeLogout(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Email: "root@example.com", IsSuperuser: true, IsActive: true}
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: u})
	app := newApp(h)

	resp, err := app.Test(postJSON("/login", LoginRequest{Email: u.Email, Password: "password123"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)

	members, err := rdb.SMembers(context.Background(), middleware.UserSessionsPrefix+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookies[0])
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, u.UserID.String(), user["user_id"])
	assert.Equal(t, "superuser", user["role"])
	assert.Equal(t, true, user["is_superuser"])

	req = httptest.NewRequest("DELETE", "/logout", nil)
	req.AddCookie(cookies[0])
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookies[0])
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := newApp(h)

	resp, err := app.Test(postJSON("/register", map[string]string{"email": "new@example.com", "password": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Len(t, resp.Cookies(), 1)

	resp, err = app.Test(postJSON("/register", map[string]string{"email": "new@example.com", "password": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(postJSON("/register", map[string]string{"email": "broken", "password": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogoutAll(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Email: "donor@example.com", IsActive: true}
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: u})
	app := newApp(h)

	var cookies []*http.Cookie
	for i := 0; i < 2; i++ {
		resp, err := app.Test(postJSON("/login", LoginRequest{Email: u.Email, Password: "password123"}))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		cookies = append(cookies, resp.Cookies()[0])
	}

	req := httptest.NewRequest("DELETE", "/sessions", nil)
	req.AddCookie(cookies[0])
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	n, err := rdb.Exists(context.Background(), middleware.UserSessionsPrefix+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	for _, c := range cookies {
		req := httptest.NewRequest("GET", "/me", nil)
		req.AddCookie(c)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("DELETE", "/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
