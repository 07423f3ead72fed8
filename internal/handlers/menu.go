package handlers

import (
	"log"

	"tavola/internal/services/menu"
	"tavola/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MenuHandler struct {
	menu menu.Service
}

func NewMenuHandler(menuSvc menu.Service) *MenuHandler {
	return &MenuHandler{menu: menuSvc}
}

// GetMenu handles GET /api/menu, optionally filtered by ?category=.
func (h *MenuHandler) GetMenu(c *fiber.Ctx) error {
	items, err := h.menu.PublicMenu(c.Context(), c.Query("category"))
	if err != nil {
		log.Printf("failed to fetch menu: %v", err)
		return response.ServerError(c, "Failed to fetch menu")
	}
	return c.JSON(items)
}
