package payment

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/database"
	"pos-backend/internal/metrics"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/validation"
)

type CreatePaymentRequest struct {
	OrderID          uint                 `json:"order_id"`
	AmountPaid       float64              `json:"amount_paid"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	PaymentTimestamp *time.Time           `json:"payment_timestamp"`
}

type UpdatePaymentRequest struct {
	AmountPaid       *float64              `json:"amount_paid"`
	PaymentMethod    *models.PaymentMethod `json:"payment_method"`
	PaymentStatus    *models.PaymentStatus `json:"payment_status"`
	PaymentTimestamp *time.Time            `json:"payment_timestamp"`
}

type PaymentResponse struct {
	ID               uint                 `json:"id"`
	OrderID          uint                 `json:"order_id"`
	AmountPaid       float64              `json:"amount_paid"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	PaymentTimestamp string               `json:"payment_timestamp"`
}

func toResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		AmountPaid:       p.AmountPaid,
		PaymentMethod:    p.PaymentMethod,
		PaymentStatus:    p.PaymentStatus,
		PaymentTimestamp: p.PaymentTimestamp.Format(time.RFC3339),
	}
}

// POST /payments. payment_timestamp defaults to now when absent.
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		if body.OrderID == 0 {
			errs.Add("order_id", "order_id is required")
		} else if err := database.DB.First(&models.Order{}, body.OrderID).Error; err != nil {
			errs.Add("order_id", "order does not exist")
		}
		if body.AmountPaid < 0 {
			errs.Add("amount_paid", "amount_paid must not be negative")
		}
		if !body.PaymentMethod.Valid() {
			errs.Add("payment_method", "payment_method must be cash, gcash or card")
		}
		if !body.PaymentStatus.Valid() {
			errs.Add("payment_status", "payment_status must be pending, completed or failed")
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		ts := time.Now()
		if body.PaymentTimestamp != nil {
			ts = *body.PaymentTimestamp
		}

		pay := models.Payment{
			OrderID:          body.OrderID,
			AmountPaid:       body.AmountPaid,
			PaymentMethod:    body.PaymentMethod,
			PaymentStatus:    body.PaymentStatus,
			PaymentTimestamp: ts,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&pay).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Recorded payment #%d for order #%d (%.2f via %s, %s)",
				pay.ID, pay.OrderID, pay.AmountPaid, pay.PaymentMethod, pay.PaymentStatus)
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record payment")
		}

		metrics.PaymentsRecorded.Inc()
		return c.Status(fiber.StatusCreated).JSON(toResponse(&pay))
	}
}

// GET /payments?page=&per_page=&order_id=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		dbq := database.DB.Model(&models.Payment{})
		if s := c.Query("order_id"); s != "" {
			var oid uint
			if _, err := fmt.Sscan(s, &oid); err != nil || oid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "order_id is invalid")
			}
			dbq = dbq.Where("order_id = ?", oid)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count payments")
		}

		var payments []models.Payment
		if err := dbq.Order("payment_timestamp DESC, id DESC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}

		resp := make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			resp = append(resp, toResponse(&payments[i]))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /payments/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pay models.Payment
		if err := database.DB.First(&pay, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}
		return c.JSON(toResponse(&pay))
	}
}

// PUT /payments/:id. There is no delete route for payments.
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pay models.Payment
		if err := database.DB.First(&pay, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}

		var body UpdatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		changes := map[string]any{}

		if body.AmountPaid != nil {
			if *body.AmountPaid < 0 {
				errs.Add("amount_paid", "amount_paid must not be negative")
			} else {
				pay.AmountPaid = *body.AmountPaid
				changes["amount_paid"] = *body.AmountPaid
			}
		}
		if body.PaymentMethod != nil {
			if !body.PaymentMethod.Valid() {
				errs.Add("payment_method", "payment_method must be cash, gcash or card")
			} else {
				pay.PaymentMethod = *body.PaymentMethod
				changes["payment_method"] = *body.PaymentMethod
			}
		}
		if body.PaymentStatus != nil {
			if !body.PaymentStatus.Valid() {
				errs.Add("payment_status", "payment_status must be pending, completed or failed")
			} else {
				pay.PaymentStatus = *body.PaymentStatus
				changes["payment_status"] = *body.PaymentStatus
			}
		}
		if body.PaymentTimestamp != nil {
			pay.PaymentTimestamp = *body.PaymentTimestamp
			changes["payment_timestamp"] = body.PaymentTimestamp.Format(time.RFC3339)
		}

		if errs.Any() {
			return validation.Respond(c, errs)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&pay).Error; err != nil {
				return err
			}
			action := fmt.Sprintf("Updated payment #%d: %s", pay.ID, audit.FieldDiff(changes))
			return audit.Record(tx, auth.ActorID(c), action)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update payment")
		}

		return c.JSON(toResponse(&pay))
	}
}
