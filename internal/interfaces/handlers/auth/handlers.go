package auth

import (
	"errors"

	authsvc "charity-fund/internal/application/auth"
	usersvc "charity-fund/internal/application/user"
	"charity-fund/internal/domain"
	"charity-fund/internal/middleware"
	"charity-fund/internal/pkg/constants"
	"charity-fund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	UserFinder authsvc.UserFinder
	Users      *usersvc.Service
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func safeUser(u *domain.User) fiber.Map {
	return fiber.Map{
		"user_id":      u.UserID.String(),
		"email":        u.Email,
		"is_active":    u.IsActive,
		"is_superuser": u.IsSuperuser,
	}
}

// startSession rotates the session id, stores u in it and sets the cookie.
func (h *Handlers) startSession(c *fiber.Ctx, u *domain.User) error {
	sid := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:      u.UserID.String(),
		Email:       u.Email,
		Role:        constants.RoleOf(u.IsSuperuser),
		IsSuperuser: u.IsSuperuser,
	})
	if h.Rdb != nil {
		if err := h.Rdb.SAdd(c.Context(), middleware.UserSessionsPrefix+u.UserID.String(), sid).Err(); err != nil {
			return err
		}
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.CookieValue(sid, h.Config.Secret)
	c.Cookie(&cookie)
	return nil
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidEmail), errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case errors.Is(err, authsvc.ErrInactiveUser):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			log.Error().Err(err).Msg("login lookup failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	if err := h.startSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": safeUser(user)}, nil)
}

// Register POST /api/v1/auth/register creates a donor account and logs it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	u, err := h.Users.Register(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrInvalidEmail), errors.Is(err, usersvc.ErrInvalidPassword):
			return response.Unprocessable(c, err.Error())
		case errors.Is(err, usersvc.ErrEmailTaken):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			log.Error().Err(err).Msg("register failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	if err := h.startSession(c, u); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": safeUser(u)}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Bool("session_id_present", middleware.GetSessionID(c) != "").Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.Context()

	if actor, ok := middleware.CurrentActor(c); ok && sessionID != "" {
		_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+actor.UserID.String(), sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}

// LogoutAll DELETE /api/v1/auth/sessions ends every session of the current user.
func (h *Handlers) LogoutAll(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if err := middleware.DestroyUserSessions(c.Context(), h.Rdb, actor.UserID.String()); err != nil {
		log.Error().Err(err).Str("user_id", actor.UserID.String()).Msg("destroy sessions failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "All sessions ended", nil, nil)
}
