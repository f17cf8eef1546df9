package handler

import (
	"tobaku-pos/internal/report"
	"tobaku-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.ReportService
}

func NewDashboardHandler(s service.ReportService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 || days > 366 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// GetLowStock lists products at or below their threshold
func (h *DashboardHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GetSummary returns the sales report
// Query params: range (today|week|month, default today), top (default 5)
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	r := report.Range(c.Query("range", string(report.RangeToday)))
	summary, err := h.service.Summary(c.UserContext(), r, c.QueryInt("top", report.DefaultTopN))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
