package handlers

import (
	"errors"
	"log"

	"tavola/internal/services/squareconnect"
	"tavola/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// adminConnectPage is where the OAuth callback lands the admin, with
// either success=true&clientId=... or error=<code> in the query.
const adminConnectPage = "/admin/square-connect"

type SquareConnectHandler struct {
	service squareconnect.Service
}

func NewSquareConnectHandler(service squareconnect.Service) *SquareConnectHandler {
	return &SquareConnectHandler{service: service}
}

// Onboard handles POST /api/square/connect/onboard.
func (h *SquareConnectHandler) Onboard(c *fiber.Ctx) error {
	var req squareconnect.OnboardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FailureCode(c, fiber.StatusBadRequest, "Invalid request format", "invalid_request")
	}

	if req.ClientID == "" || req.BusinessName == "" || req.Email == "" {
		return response.FailureCode(c, fiber.StatusBadRequest,
			"clientId, businessName and email are required", "missing_fields")
	}

	authorizationURL, err := h.service.Onboard(c.Context(), &req)
	if err != nil {
		log.Printf("square onboarding failed for client %s: %v", req.ClientID, err)
		return response.FailureCode(c, fiber.StatusInternalServerError,
			"Failed to start onboarding", "onboarding_failed")
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"authorizationUrl": authorizationURL,
		"clientId":         req.ClientID,
		"message":          "Redirect the client to authorizationUrl to authorize Square access",
	})
}

// Callback handles GET /api/square/connect/callback, the provider
// redirect carrying code and state (= clientId).
func (h *SquareConnectHandler) Callback(c *fiber.Ctx) error {
	if providerErr := c.Query("error"); providerErr != "" {
		return redirectError(c, providerErr)
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return redirectError(c, "missing_parameters")
	}

	if err := h.service.CompleteCallback(c.Context(), code, state); err != nil {
		log.Printf("square callback failed for client %s: %v", state, err)
		switch {
		case errors.Is(err, squareconnect.ErrTokenExchange):
			return redirectError(c, "token_exchange_failed")
		case errors.Is(err, squareconnect.ErrMerchantInfo):
			return redirectError(c, "merchant_info_failed")
		default:
			return redirectError(c, "internal_error")
		}
	}

	return c.Redirect(adminConnectPage+"?success=true&clientId="+state, fiber.StatusFound)
}

func redirectError(c *fiber.Ctx, code string) error {
	return c.Redirect(adminConnectPage+"?error="+code, fiber.StatusFound)
}
