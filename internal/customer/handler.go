package customer

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/validation"
)

type CreateCustomerRequest struct {
	CustomerName   string `json:"customer_name"`
	TableNumber    string `json:"table_number"`
	OrderReference string `json:"order_reference"`
}

type UpdateCustomerRequest struct {
	CustomerName   *string `json:"customer_name"`
	TableNumber    *string `json:"table_number"`
	OrderReference *string `json:"order_reference"`
}

type CustomerResponse struct {
	ID             uint   `json:"id"`
	CustomerName   string `json:"customer_name"`
	TableNumber    string `json:"table_number"`
	OrderReference string `json:"order_reference"`
}

func toResponse(cu *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             cu.ID,
		CustomerName:   cu.CustomerName,
		TableNumber:    cu.TableNumber,
		OrderReference: cu.OrderReference,
	}
}

// POST /customers. Public, this is how a QR session registers itself. The
// audit actor is nil (system) when no session is present.
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.CustomerName = validation.Sanitize(body.CustomerName)
		body.TableNumber = strings.TrimSpace(body.TableNumber)
		body.OrderReference = strings.TrimSpace(body.OrderReference)

		errs := validation.Errors{}
		if body.TableNumber == "" {
			errs.Add("table_number", "table_number is required")
		}
		if body.OrderReference == "" {
			errs.Add("order_reference", "order_reference is required")
		} else {
			var count int64
			if err := database.DB.Model(&models.Customer{}).
				Where("order_reference = ?", body.OrderReference).Count(&count).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not check order reference")
			}
			if count > 0 {
				errs.Add("order_reference", "order_reference is already taken")
			}
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		customer := models.Customer{
			CustomerName:   body.CustomerName,
			TableNumber:    body.TableNumber,
			OrderReference: body.OrderReference,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Registered customer #%d (table %s, ref %s)",
				customer.ID, customer.TableNumber, customer.OrderReference)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not register customer")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&customer))
	}
}

// GET /customers?page=&per_page=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		var total int64
		if err := database.DB.Model(&models.Customer{}).Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count customers")
		}

		var customers []models.Customer
		if err := database.DB.Order("created_at DESC, id DESC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list customers")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			resp = append(resp, toResponse(&customers[i]))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /customers/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return c.JSON(toResponse(&customer))
	}
}

// PUT /customers/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		changes := map[string]any{}

		if body.CustomerName != nil {
			name := validation.Sanitize(*body.CustomerName)
			customer.CustomerName = name
			changes["customer_name"] = name
		}
		if body.TableNumber != nil {
			table := strings.TrimSpace(*body.TableNumber)
			if table == "" {
				errs.Add("table_number", "table_number must not be empty")
			} else {
				customer.TableNumber = table
				changes["table_number"] = table
			}
		}
		if body.OrderReference != nil {
			ref := strings.TrimSpace(*body.OrderReference)
			if ref == "" {
				errs.Add("order_reference", "order_reference must not be empty")
			} else if ref != customer.OrderReference {
				var count int64
				if err := database.DB.Model(&models.Customer{}).
					Where("order_reference = ? AND id <> ?", ref, customer.ID).Count(&count).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Could not check order reference")
				}
				if count > 0 {
					errs.Add("order_reference", "order_reference is already taken")
				} else {
					customer.OrderReference = ref
					changes["order_reference"] = ref
				}
			}
		}

		if errs.Any() {
			return validation.Respond(c, errs)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&customer).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Updated customer #%d: %s", customer.ID, audit.FieldDiff(changes))
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}

		return c.JSON(toResponse(&customer))
	}
}
