package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/adiah-react/oxis-sales/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// GetDashboardStats returns overview statistics
func (h *AnalyticsHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}

// GetItemSales returns per-product sales for a period
// Query params: range (daily|weekly|monthly, default daily), date (YYYY-MM-DD, default today)
func (h *AnalyticsHandler) GetItemSales(c *fiber.Ctx) error {
	rangeType := c.Query("range", "daily")

	reference := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date format, use YYYY-MM-DD"})
		}
		reference = parsed
	}

	report, err := h.service.GetItemSales(rangeType, reference)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch item sales"})
	}

	return c.JSON(report)
}

// GetTopProducts returns the best sellers by units sold
// Query params: limit (default 5)
func (h *AnalyticsHandler) GetTopProducts(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "5")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 5
	}

	items, err := h.service.GetTopProducts(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch top products"})
	}

	return c.JSON(fiber.Map{
		"limit": limit,
		"data":  items,
	})
}
