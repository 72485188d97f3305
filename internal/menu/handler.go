package menu

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/validation"
)

type CreateMenuRequest struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	Category           string  `json:"category"`
	AvailabilityStatus *bool   `json:"availability_status"`
	ProductDetails     string  `json:"product_details"`
}

type UpdateMenuRequest struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Price              *float64 `json:"price"`
	Category           *string  `json:"category"`
	AvailabilityStatus *bool    `json:"availability_status"`
	ProductDetails     *string  `json:"product_details"`
}

type MenuResponse struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              float64 `json:"price"`
	Category           string  `json:"category"`
	AvailabilityStatus bool    `json:"availability_status"`
	ProductDetails     string  `json:"product_details"`
}

func toResponse(m *models.Menu) MenuResponse {
	return MenuResponse{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price,
		Category:           m.Category,
		AvailabilityStatus: m.AvailabilityStatus,
		ProductDetails:     m.ProductDetails,
	}
}

// POST /menus. Text fields are tag-stripped and trimmed before validation.
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMenuRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = validation.Sanitize(body.Name)
		body.Description = validation.Sanitize(body.Description)
		body.Category = validation.Sanitize(body.Category)
		body.ProductDetails = validation.Sanitize(body.ProductDetails)

		errs := validation.Errors{}
		if body.Name == "" {
			errs.Add("name", "name is required")
		}
		if body.Price < 0 {
			errs.Add("price", "price must not be negative")
		}
		if body.Category == "" {
			errs.Add("category", "category is required")
		}
		if body.AvailabilityStatus == nil {
			errs.Add("availability_status", "availability_status is required")
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		item := models.Menu{
			Name:               body.Name,
			Description:        body.Description,
			Price:              body.Price,
			Category:           body.Category,
			AvailabilityStatus: *body.AvailabilityStatus,
			ProductDetails:     body.ProductDetails,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Created menu #%d (%s, %.2f)", item.ID, item.Name, item.Price)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create menu item")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&item))
	}
}

// GET /menus?page=&per_page=&available=1, public.
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		dbq := database.DB.Model(&models.Menu{})
		if c.Query("available") == "1" || c.Query("available") == "true" {
			dbq = dbq.Where("availability_status = ?", true)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count menu items")
		}

		var items []models.Menu
		if err := dbq.Order("category ASC, name ASC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list menu items")
		}

		resp := make([]MenuResponse, 0, len(items))
		for i := range items {
			resp = append(resp, toResponse(&items[i]))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /menus/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.Menu
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
		}
		return c.JSON(toResponse(&item))
	}
}

// PUT /menus/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.Menu
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
		}

		var body UpdateMenuRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		changes := map[string]any{}

		if body.Name != nil {
			name := validation.Sanitize(*body.Name)
			if name == "" {
				errs.Add("name", "name must not be empty")
			} else {
				item.Name = name
				changes["name"] = name
			}
		}
		if body.Description != nil {
			desc := validation.Sanitize(*body.Description)
			item.Description = desc
			changes["description"] = desc
		}
		if body.Price != nil {
			if *body.Price < 0 {
				errs.Add("price", "price must not be negative")
			} else {
				item.Price = *body.Price
				changes["price"] = *body.Price
			}
		}
		if body.Category != nil {
			cat := validation.Sanitize(*body.Category)
			if cat == "" {
				errs.Add("category", "category must not be empty")
			} else {
				item.Category = cat
				changes["category"] = cat
			}
		}
		if body.AvailabilityStatus != nil {
			item.AvailabilityStatus = *body.AvailabilityStatus
			changes["availability_status"] = *body.AvailabilityStatus
		}
		if body.ProductDetails != nil {
			details := validation.Sanitize(*body.ProductDetails)
			item.ProductDetails = details
			changes["product_details"] = details
		}

		if errs.Any() {
			return validation.Respond(c, errs)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Updated menu #%d: %s", item.ID, audit.FieldDiff(changes))
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update menu item")
		}

		return c.JSON(toResponse(&item))
	}
}

// DELETE /menus/:id. Restricted while order items reference the menu. A
// rejected delete writes no audit entry.
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.Menu
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
		}

		var refs int64
		database.DB.Model(&models.OrderItem{}).Where("menu_id = ?", item.ID).Count(&refs)
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict, "Menu item is referenced by orders and cannot be deleted")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Deleted menu #%d (%s)", item.ID, item.Name)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete menu item")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
