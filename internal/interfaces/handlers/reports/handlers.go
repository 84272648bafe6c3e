package reports

import (
	"errors"

	reportsvc "charity-fund/internal/application/reports"
	"charity-fund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *reportsvc.Service
}

// Export POST /api/v1/google. data is the spreadsheet URL.
func (h *Handlers) Export(c *fiber.Ctx) error {
	rec, err := h.Service.Export(c.UserContext())
	if err != nil {
		switch {
		case errors.Is(err, reportsvc.ErrCapacityExceeded):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, reportsvc.ErrNotConfigured):
			return response.Error(c, err.Error(), fiber.StatusNotImplemented, nil)
		case errors.Is(err, reportsvc.ErrSink):
			return response.Error(c, "Report export failed", fiber.StatusBadGateway, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Report created", rec.URL, fiber.Map{
		"spreadsheet_id": rec.SpreadsheetID,
		"project_count":  rec.ProjectCount,
	})
}

// History GET /api/v1/google
func (h *Handlers) History(c *fiber.Ctx) error {
	list, err := h.Service.History(c.UserContext())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.List(c, "Report exports fetched", list)
}
