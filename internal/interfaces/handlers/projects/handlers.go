package projects

import (
	"errors"

	projectsvc "charity-fund/internal/application/projects"
	"charity-fund/internal/infrastructure/lock"
	"charity-fund/internal/pkg/response"
	"charity-fund/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *projectsvc.Service
}

// ProjectRequest is the body of create and update; absent fields stay nil.
type ProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	FullAmount  *int64  `json:"full_amount"`
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, projectsvc.ErrEmptyField),
		errors.Is(err, projectsvc.ErrInvalidName),
		errors.Is(err, projectsvc.ErrInvalidDescription),
		errors.Is(err, projectsvc.ErrInvalidFullAmount),
		errors.Is(err, projectsvc.ErrFullBelowInvested):
		return response.Unprocessable(c, err.Error())
	case errors.Is(err, projectsvc.ErrDuplicateName),
		errors.Is(err, projectsvc.ErrProjectClosed),
		errors.Is(err, projectsvc.ErrProjectHasFunds):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, projectsvc.ErrProjectNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, lock.ErrNotAcquired):
		return response.Error(c, "Allocation is busy, try again later", fiber.StatusServiceUnavailable, nil)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("charity project request failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

func parseBody(c *fiber.Ctx) (ProjectRequest, error) {
	var req ProjectRequest
	err := validation.DecodeStrict(c.Body(), &req)
	return req, err
}

func projectID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("project_id"))
	return id, err == nil
}

// Create POST /api/v1/charity_project
func (h *Handlers) Create(c *fiber.Ctx) error {
	req, err := parseBody(c)
	if err != nil {
		return response.Unprocessable(c, err.Error())
	}
	p, err := h.Service.Create(c.UserContext(), projectsvc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		FullAmount:  req.FullAmount,
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Charity project created", p, nil)
}

// List GET /api/v1/charity_project
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext())
	if err != nil {
		return mapError(c, err)
	}
	return response.List(c, "Charity projects fetched", list)
}

// Update PATCH /api/v1/charity_project/:project_id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return mapError(c, projectsvc.ErrProjectNotFound)
	}
	req, err := parseBody(c)
	if err != nil {
		return response.Unprocessable(c, err.Error())
	}
	p, err := h.Service.Update(c.UserContext(), id, projectsvc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		FullAmount:  req.FullAmount,
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Charity project updated", p, nil)
}

// Delete DELETE /api/v1/charity_project/:project_id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return mapError(c, projectsvc.ErrProjectNotFound)
	}
	p, err := h.Service.Delete(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Charity project deleted", p, nil)
}

// Allocations GET /api/v1/charity_project/:project_id/allocations
func (h *Handlers) Allocations(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return mapError(c, projectsvc.ErrProjectNotFound)
	}
	rows, err := h.Service.Allocations(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.List(c, "Allocations fetched", rows)
}
