package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxTokenIDKey  = "token_id"
)

// verifyBearer checks the Authorization header: signature, claims and the
// revocation record behind the token's jti.
func verifyBearer(cfg *config.Config, authHeader string) (*Claims, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, false
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}

	// A token that was logged out is dead even if its signature is still
	// valid.
	var record models.AuthToken
	if err := database.DB.Where("jti = ?", claims.ID).First(&record).Error; err != nil {
		return nil, false
	}
	if record.Revoked || time.Now().After(record.ExpiresAt) {
		return nil, false
	}

	return claims, true
}

func setActorLocals(c *fiber.Ctx, claims *Claims) {
	c.Locals(CtxUserIDKey, claims.UserID)
	c.Locals(CtxUserRoleKey, claims.Role)
	c.Locals(CtxTokenIDKey, claims.ID)
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		claims, ok := verifyBearer(cfg, authHeader)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid, expired or revoked token")
		}

		setActorLocals(c, claims)
		return c.Next()
	}
}

// OptionalJWT populates the actor locals when a valid bearer token is present
// and lets the request through either way. Used on public routes whose audit
// entries should still attribute a logged-in caller.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := verifyBearer(cfg, c.Get("Authorization")); ok {
			setActorLocals(c, claims)
		}
		return c.Next()
	}
}

// RequireRole allows the request through only when the authenticated role is
// in the allowed set. Never attempts the underlying mutation on failure.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information missing")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// ActorID returns the authenticated user id, or nil when the request carries
// no session (public routes). The nil actor is recorded as system-initiated.
func ActorID(c *fiber.Ctx) *uint {
	if id, ok := c.Locals(CtxUserIDKey).(uint); ok {
		return &id
	}
	return nil
}
