package user

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/validation"
)

type CreateUserRequest struct {
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	Password      string          `json:"password"`
	Role          models.UserRole `json:"role"`
	ContactNumber string          `json:"contact_number"`
}

type UpdateUserRequest struct {
	Name          *string          `json:"name"`
	Username      *string          `json:"username"`
	Password      *string          `json:"password"`
	Role          *models.UserRole `json:"role"`
	ContactNumber *string          `json:"contact_number"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	Role          models.UserRole `json:"role"`
	ContactNumber string          `json:"contact_number"`
}

func toResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Role:          u.Role,
		ContactNumber: u.ContactNumber,
	}
}

// POST /users
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Username = strings.TrimSpace(body.Username)

		errs := validation.Errors{}
		if body.Name == "" {
			errs.Add("name", "name is required")
		}
		if body.Username == "" {
			errs.Add("username", "username is required")
		}
		if len(body.Password) < 6 {
			errs.Add("password", "password must be at least 6 characters")
		}
		if !body.Role.Valid() {
			errs.Add("role", "role must be Admin or Cashier")
		}
		if body.Username != "" {
			var count int64
			if err := database.DB.Model(&models.User{}).Where("username = ?", body.Username).Count(&count).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not check username")
			}
			if count > 0 {
				errs.Add("username", "username is already taken")
			}
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:          body.Name,
			Username:      body.Username,
			PasswordHash:  string(hash),
			Role:          body.Role,
			ContactNumber: body.ContactNumber,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Created user #%d (%s, %s)", user.ID, user.Username, user.Role)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&user))
	}
}

// GET /users?page=&per_page=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		var total int64
		if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count users")
		}

		var users []models.User
		if err := database.DB.Order("id ASC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, toResponse(&users[i]))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /users/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return c.JSON(toResponse(&user))
	}
}

// PUT /users/:id. Only supplied fields are checked and applied. An omitted
// password leaves the stored hash untouched.
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		changes := map[string]any{}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				errs.Add("name", "name must not be empty")
			} else {
				user.Name = name
				changes["name"] = name
			}
		}
		if body.Username != nil {
			username := strings.TrimSpace(*body.Username)
			if username == "" {
				errs.Add("username", "username must not be empty")
			} else if username != user.Username {
				var count int64
				if err := database.DB.Model(&models.User{}).
					Where("username = ? AND id <> ?", username, user.ID).Count(&count).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Could not check username")
				}
				if count > 0 {
					errs.Add("username", "username is already taken")
				} else {
					user.Username = username
					changes["username"] = username
				}
			}
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				errs.Add("password", "password must be at least 6 characters")
			} else {
				hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
				if err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
				}
				user.PasswordHash = string(hash)
				changes["password"] = "(rehashed)"
			}
		}
		if body.Role != nil {
			if !body.Role.Valid() {
				errs.Add("role", "role must be Admin or Cashier")
			} else {
				user.Role = *body.Role
				changes["role"] = *body.Role
			}
		}
		if body.ContactNumber != nil {
			user.ContactNumber = *body.ContactNumber
			changes["contact_number"] = *body.ContactNumber
		}

		if errs.Any() {
			return validation.Respond(c, errs)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Updated user #%d: %s", user.ID, audit.FieldDiff(changes))
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
		}

		return c.JSON(toResponse(&user))
	}
}

// DELETE /users/:id. Restricted while orders reference the user as handler,
// so order history stays intact.
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var refs int64
		database.DB.Model(&models.Order{}).Where("handled_by = ?", user.ID).Count(&refs)
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict, "User has handled orders and cannot be deleted")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.AuthToken{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&user).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Deleted user #%d (%s)", user.ID, user.Username)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete user")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
