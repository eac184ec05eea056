package handler

import (
	"errors"

	"github.com/adiah-react/oxis-sales/internal/model"
	"github.com/adiah-react/oxis-sales/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PersonHandler struct {
	service service.PersonService
}

func NewPersonHandler(s service.PersonService) *PersonHandler {
	return &PersonHandler{service: s}
}

func (h *PersonHandler) CreatePerson(c *fiber.Ctx) error {
	var person model.Person
	if err := c.BodyParser(&person); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreatePerson(&person, getUserID(c)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Person created", "data": person})
}

func (h *PersonHandler) UpdatePerson(c *fiber.Ctx) error {
	personID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid person ID"})
	}

	var person model.Person
	if err := c.BodyParser(&person); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdatePerson(personID, &person, getUserID(c))
	if err != nil {
		if errors.Is(err, model.ErrPersonNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Person updated", "data": updated})
}

func (h *PersonHandler) DeletePerson(c *fiber.Ctx) error {
	personID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid person ID"})
	}

	if err := h.service.DeletePerson(personID); err != nil {
		if errors.Is(err, model.ErrPersonNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete person"})
	}

	return c.JSON(fiber.Map{"message": "Person deleted"})
}

type BalanceAdjustmentRequest struct {
	Amount float64 `json:"amount"`
}

// AdjustBalance applies a top-up or manual charge independent of any sale.
// POST /api/v1/persons/:id/balance
func (h *PersonHandler) AdjustBalance(c *fiber.Ctx) error {
	personID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid person ID"})
	}

	var req BalanceAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Amount == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Amount must be non-zero"})
	}

	person, err := h.service.AdjustBalance(personID, req.Amount)
	if err != nil {
		if errors.Is(err, model.ErrPersonNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to adjust balance"})
	}

	return c.JSON(fiber.Map{"message": "Balance adjusted", "data": person})
}

func (h *PersonHandler) GetPersons(c *fiber.Ctx) error {
	persons, err := h.service.GetAllPersons()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(persons)
}

func (h *PersonHandler) GetPerson(c *fiber.Ctx) error {
	personID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid person ID"})
	}

	person, err := h.service.GetPersonByID(personID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Person not found"})
	}
	return c.JSON(person)
}
