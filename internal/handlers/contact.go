package handlers

import (
	"log"

	"tavola/internal/models"
	"tavola/internal/repositories"
	"tavola/internal/services/notification"
	"tavola/internal/utils/response"
	"tavola/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ContactHandler struct {
	contacts repositories.ContactRepository
	notifier notification.Publisher
}

func NewContactHandler(contacts repositories.ContactRepository, notifier notification.Publisher) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		notifier: notifier,
	}
}

// SubmitContact handles POST /api/contact. The stored message is the
// operation that matters; the push notification to staff is best-effort
// and a publish failure never fails the request.
func (h *ContactHandler) SubmitContact(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	v := validation.New()
	v.Contact(&msg)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	if err := h.contacts.Create(c.Context(), &msg); err != nil {
		log.Printf("failed to store contact message: %v", err)
		return response.ServerError(c, "Failed to submit message")
	}

	if h.notifier != nil {
		push := &notification.Message{
			Type:    notification.TypePush,
			To:      "staff",
			Subject: "New contact message",
			Body:    msg.Subject,
			Metadata: map[string]string{
				"from":  msg.Email,
				"name":  msg.Name,
				"table": "contact_messages",
			},
		}
		if err := h.notifier.Publish(c.Context(), push); err != nil {
			log.Printf("failed to queue contact push notification: %v", err)
		}
	}

	return response.Success(c, "Message received", fiber.Map{"id": msg.ID})
}
