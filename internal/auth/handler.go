package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}

		ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
		record := models.AuthToken{
			JTI:       uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(ttl),
		}
		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not issue token")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user, record.JTI, ttl)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not sign token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":       user.ID,
				"name":     user.Name,
				"username": user.Username,
				"role":     user.Role,
			},
		})
	}
}

// POST /logout revokes the token the request was made with.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		jti, ok := c.Locals(CtxTokenIDKey).(string)
		if !ok || jti == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Token information missing")
		}

		if err := database.DB.Model(&models.AuthToken{}).
			Where("jti = ?", jti).
			Update("revoked", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not revoke token")
		}

		return c.JSON(fiber.Map{"message": "Logged out"})
	}
}

// POST /logout-all revokes every token issued to the authenticated user.
func LogoutAllHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "User information missing")
		}

		if err := database.DB.Model(&models.AuthToken{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not revoke tokens")
		}

		return c.JSON(fiber.Map{"message": "Logged out everywhere"})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "User information missing")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(fiber.Map{
			"id":             user.ID,
			"name":           user.Name,
			"username":       user.Username,
			"role":           user.Role,
			"contact_number": user.ContactNumber,
		})
	}
}
