package handlers

import (
	"errors"
	"log"

	"tavola/internal/services/order"
	"tavola/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req order.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	created, err := h.orders.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, order.ErrEmptyOrder) || errors.Is(err, order.ErrItemUnavailable) {
			return response.BadRequest(c, err.Error())
		}
		log.Printf("failed to create order: %v", err)
		return response.ServerError(c, "Failed to create order")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetOrder handles GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	ord, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return response.Error(c, fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(ord)
}
