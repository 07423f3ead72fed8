// Package middleware provides HTTP middleware for the fiber app,
// chiefly the admin authorization gate shared by every protected route.
package middleware

import (
	"errors"
	"log"
	"strings"

	"tavola/internal/models"
	"tavola/internal/services/auth"
	"tavola/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenCookie is the cookie page routes authenticate with.
const AdminTokenCookie = "admin_token"

// AuthMiddleware verifies admin JWTs. API routes get a 401 JSON body on
// failure; page routes are redirected to the login page.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAdmin protects API routes.
func (m *AuthMiddleware) RequireAdmin(c *fiber.Ctx) error {
	claims, err := m.verify(c)
	if err != nil {
		log.Printf("admin auth rejected: %v", err)
		return response.Unauthorized(c)
	}

	c.Locals("claims", claims)
	return c.Next()
}

// RequireAdminPage protects server-rendered admin pages.
func (m *AuthMiddleware) RequireAdminPage(c *fiber.Ctx) error {
	claims, err := m.verify(c)
	if err != nil {
		return c.Redirect("/admin/login", fiber.StatusFound)
	}

	c.Locals("claims", claims)
	return c.Next()
}

func (m *AuthMiddleware) verify(c *fiber.Ctx) (*models.AdminClaims, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, errMissingToken
	}
	return m.authService.ParseToken(token)
}

var errMissingToken = errors.New("missing token")

// tokenFromRequest prefers the Authorization header and falls back to
// the admin cookie used by page navigation.
func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Cookies(AdminTokenCookie)
}
