package handler

import (
	"errors"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

// Commit converts the posted cart into a sale.
// POST /api/v1/checkout
func (h *CheckoutHandler) Commit(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.service.Commit(&req, getUserID(c))
	if err != nil {
		var insufficient *model.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			return c.Status(409).JSON(fiber.Map{
				"error":      err.Error(),
				"product_id": insufficient.ProductID,
				"requested":  insufficient.Requested,
				"available":  insufficient.Available,
			})
		case errors.Is(err, model.ErrEmptyCart),
			errors.Is(err, model.ErrValidation),
			errors.Is(err, model.ErrBalanceRequiresPerson):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, model.ErrProductNotFound),
			errors.Is(err, model.ErrPersonNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(201).JSON(fiber.Map{"message": "Sale committed", "data": sale})
}

func (h *CheckoutHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetSalesHistory()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

func (h *CheckoutHandler) GetSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSaleByID(saleID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Sale not found"})
	}
	return c.JSON(sale)
}
