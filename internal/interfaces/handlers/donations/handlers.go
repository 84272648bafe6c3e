package donations

import (
	"errors"

	donationsvc "charity-fund/internal/application/donations"
	"charity-fund/internal/domain"
	"charity-fund/internal/infrastructure/lock"
	"charity-fund/internal/middleware"
	"charity-fund/internal/pkg/response"
	"charity-fund/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *donationsvc.Service
}

type DonationRequest struct {
	FullAmount     *int64  `json:"full_amount"`
	Comment        *string `json:"comment"`
	InvestedAmount *int64  `json:"invested_amount"`
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, donationsvc.ErrEmptyField),
		errors.Is(err, donationsvc.ErrInvalidFullAmount),
		errors.Is(err, donationsvc.ErrInvalidSeed):
		return response.Unprocessable(c, err.Error())
	case errors.Is(err, lock.ErrNotAcquired):
		return response.Error(c, "Allocation is busy, try again later", fiber.StatusServiceUnavailable, nil)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("donation request failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

func views(list []domain.Donation) []domain.DonationView {
	out := make([]domain.DonationView, 0, len(list))
	for i := range list {
		out = append(out, list[i].View())
	}
	return out
}

// Create POST /api/v1/donation. The response hides allocation state.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req DonationRequest
	if err := validation.DecodeStrict(c.Body(), &req); err != nil {
		return response.Unprocessable(c, err.Error())
	}
	d, err := h.Service.Create(c.UserContext(), &actor.UserID, donationsvc.CreateInput{
		FullAmount:     req.FullAmount,
		Comment:        req.Comment,
		InvestedAmount: req.InvestedAmount,
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Donation created", d.View(), nil)
}

// List GET /api/v1/donation (superuser): full records.
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext())
	if err != nil {
		return mapError(c, err)
	}
	return response.List(c, "Donations fetched", list)
}

// Mine GET /api/v1/donation/my
func (h *Handlers) Mine(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListByUser(c.UserContext(), actor.UserID)
	if err != nil {
		return mapError(c, err)
	}
	return response.List(c, "Donations fetched", views(list))
}
