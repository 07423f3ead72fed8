package handlers

import (
	"log"
	"strconv"

	"tavola/internal/models"
	"tavola/internal/repositories"
	"tavola/internal/services/menu"
	"tavola/internal/utils/response"
	"tavola/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the menu CRUD and stats endpoints behind the
// admin gate.
type AdminHandler struct {
	menu     menu.Service
	menuRepo repositories.MenuItemRepository
	orders   repositories.OrderRepository
	clients  repositories.ClientAccountRepository
	payments repositories.PaymentRepository
}

func NewAdminHandler(
	menuSvc menu.Service,
	menuRepo repositories.MenuItemRepository,
	orders repositories.OrderRepository,
	clients repositories.ClientAccountRepository,
	payments repositories.PaymentRepository,
) *AdminHandler {
	return &AdminHandler{
		menu:     menuSvc,
		menuRepo: menuRepo,
		orders:   orders,
		clients:  clients,
		payments: payments,
	}
}

func (h *AdminHandler) ListMenuItems(c *fiber.Ctx) error {
	items, err := h.menu.List(c.Context())
	if err != nil {
		log.Printf("failed to list menu items: %v", err)
		return response.ServerError(c, "Failed to fetch menu items")
	}
	return c.JSON(items)
}

func (h *AdminHandler) GetMenuItem(c *fiber.Ctx) error {
	id, err := menuItemID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid menu item id")
	}

	item, err := h.menu.Get(c.Context(), id)
	if err != nil {
		return response.Error(c, fiber.StatusNotFound, "Menu item not found")
	}
	return c.JSON(item)
}

func (h *AdminHandler) CreateMenuItem(c *fiber.Ctx) error {
	var item models.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	v := validation.New()
	v.MenuItem(&item)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	if err := h.menu.Create(c.Context(), &item); err != nil {
		log.Printf("failed to create menu item: %v", err)
		return response.ServerError(c, "Failed to create menu item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *AdminHandler) UpdateMenuItem(c *fiber.Ctx) error {
	id, err := menuItemID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid menu item id")
	}

	existing, err := h.menu.Get(c.Context(), id)
	if err != nil {
		return response.Error(c, fiber.StatusNotFound, "Menu item not found")
	}

	var item models.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt

	v := validation.New()
	v.MenuItem(&item)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	if err := h.menu.Update(c.Context(), &item); err != nil {
		log.Printf("failed to update menu item %d: %v", id, err)
		return response.ServerError(c, "Failed to update menu item")
	}
	return c.JSON(item)
}

func (h *AdminHandler) DeleteMenuItem(c *fiber.Ctx) error {
	id, err := menuItemID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid menu item id")
	}

	if err := h.menu.Delete(c.Context(), id); err != nil {
		log.Printf("failed to delete menu item %d: %v", id, err)
		return response.ServerError(c, "Failed to delete menu item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats returns the admin dashboard counters.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	ctx := c.Context()

	menuCount, err := h.menuRepo.Count(ctx)
	if err != nil {
		return h.statsError(c, err)
	}
	orderCount, err := h.orders.Count(ctx)
	if err != nil {
		return h.statsError(c, err)
	}
	activeClients, err := h.clients.CountActive(ctx)
	if err != nil {
		return h.statsError(c, err)
	}
	volume, err := h.payments.SettledVolume(ctx)
	if err != nil {
		return h.statsError(c, err)
	}

	return c.JSON(fiber.Map{
		"menuItems":     menuCount,
		"orders":        orderCount,
		"activeClients": activeClients,
		"paymentVolume": volume,
	})
}

func (h *AdminHandler) statsError(c *fiber.Ctx, err error) error {
	log.Printf("failed to compute stats: %v", err)
	return response.ServerError(c, "Failed to fetch stats")
}

func menuItemID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}
