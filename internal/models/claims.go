package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims is the JWT payload issued on admin login and verified by
// the admin gate on every protected route.
type AdminClaims struct {
	jwt.RegisteredClaims
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}
