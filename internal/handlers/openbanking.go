package handlers

import (
	"errors"
	"log"

	"tavola/internal/models"
	"tavola/internal/services/fees"
	"tavola/internal/services/notification"
	"tavola/internal/services/openbanking"
	"tavola/internal/services/order"
	"tavola/internal/utils/response"
	"tavola/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type OpenBankingHandler struct {
	payments openbanking.Service
	orders   order.Service
	notifier notification.Publisher
}

func NewOpenBankingHandler(payments openbanking.Service, orders order.Service, notifier notification.Publisher) *OpenBankingHandler {
	return &OpenBankingHandler{
		payments: payments,
		orders:   orders,
		notifier: notifier,
	}
}

// CreatePayment handles POST /api/openbanking/create-payment.
func (h *OpenBankingHandler) CreatePayment(c *fiber.Ctx) error {
	var req models.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FailureCode(c, fiber.StatusBadRequest, "Invalid request format", "invalid_request")
	}

	v := validation.New()
	v.CreatePayment(&req)
	if !v.Valid() {
		return response.FailureCode(c, fiber.StatusBadRequest, v.First(), "validation_error")
	}

	result, err := h.payments.CreatePayment(c.Context(), &req)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"paymentId":        result.PaymentID,
		"status":           result.Status,
		"amount":           result.Amount,
		"fee":              result.Fee,
		"totalAmount":      result.TotalAmount,
		"currency":         result.Currency,
		"orderId":          result.OrderID,
		"clientId":         result.ClientID,
		"authorizationUrl": result.AuthorizationURL,
		"createdAt":        result.CreatedAt,
	})
}

func (h *OpenBankingHandler) paymentError(c *fiber.Ctx, err error) error {
	log.Printf("create payment failed: %v", err)

	if errors.Is(err, fees.ErrInvalidAmount) {
		return response.FailureCode(c, fiber.StatusBadRequest, "Invalid amount", "validation_error")
	}

	var providerErr *openbanking.ProviderError
	if errors.As(err, &providerErr) {
		status := fiber.StatusBadRequest
		if providerErr.Status >= 500 {
			status = fiber.StatusInternalServerError
		}
		return response.FailureCode(c, status, "Payment failed", providerErr.Code)
	}

	return response.FailureCode(c, fiber.StatusInternalServerError, "Payment failed", "internal_error")
}

type webhookEvent struct {
	Type      string `json:"type"`
	PaymentID string `json:"payment_id"`
}

// Webhook handles provider status notifications and moves the payment
// and its order through the lifecycle.
func (h *OpenBankingHandler) Webhook(c *fiber.Ctx) error {
	var event webhookEvent
	if err := c.BodyParser(&event); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}
	if event.PaymentID == "" {
		return response.BadRequest(c, "Missing payment_id")
	}

	var paymentStatus, orderStatus string
	switch event.Type {
	case "payment_executed":
		paymentStatus, orderStatus = models.PaymentStatusExecuted, models.OrderStatusPaid
	case "payment_settled":
		paymentStatus, orderStatus = models.PaymentStatusSettled, models.OrderStatusPaid
	case "payment_failed":
		paymentStatus, orderStatus = models.PaymentStatusFailed, models.OrderStatusFailed
	default:
		// Unknown event types are acknowledged so the provider stops
		// redelivering them.
		return c.SendStatus(fiber.StatusOK)
	}

	record, err := h.payments.UpdateFromWebhook(c.Context(), event.PaymentID, paymentStatus)
	if err != nil {
		log.Printf("webhook update failed for payment %s: %v", event.PaymentID, err)
		return response.ServerError(c, "Failed to process webhook")
	}

	if record.OrderID != "" {
		if err := h.orders.UpdateStatus(c.Context(), record.OrderID, orderStatus); err != nil {
			log.Printf("failed to update order %s: %v", record.OrderID, err)
		} else if orderStatus == models.OrderStatusPaid {
			h.sendConfirmation(c, record)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

// sendConfirmation queues the order confirmation email. Delivery is
// secondary to payment processing, so a publish failure is only logged.
func (h *OpenBankingHandler) sendConfirmation(c *fiber.Ctx, record *models.PaymentRecord) {
	if h.notifier == nil {
		return
	}

	ord, err := h.orders.Get(c.Context(), record.OrderID)
	if err != nil || ord.CustomerEmail == "" {
		return
	}

	msg := &notification.Message{
		Type:    notification.TypeEmail,
		To:      ord.CustomerEmail,
		Subject: "Your order is confirmed",
		Body:    "We've received your payment and your order is being prepared.",
		Metadata: map[string]string{
			"order_id":   ord.ID,
			"payment_id": record.PaymentID,
		},
	}
	if err := h.notifier.Publish(c.Context(), msg); err != nil {
		log.Printf("failed to queue confirmation email for order %s: %v", ord.ID, err)
	}
}
