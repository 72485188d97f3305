package order

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"pos-backend/internal/auth"
	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
	"pos-backend/internal/validation"
)

type CreateOrderRequest struct {
	CustomerID  uint               `json:"customer_id"`
	HandledBy   uint               `json:"handled_by"`
	OrderType   models.OrderType   `json:"order_type"`
	OrderSource models.OrderSource `json:"order_source"`
	Expiry      *time.Time         `json:"expiry_timestamp"`
	Items       []ItemInput        `json:"items"`
	// Accepted for compatibility with older clients, always recomputed
	// server-side from the items.
	TotalAmount float64 `json:"total_amount"`
}

type UpdateOrderRequest struct {
	CustomerID  *uint               `json:"customer_id"`
	HandledBy   *uint               `json:"handled_by"`
	OrderType   *models.OrderType   `json:"order_type"`
	Status      *models.OrderStatus `json:"status"`
	OrderSource *models.OrderSource `json:"order_source"`
	Expiry      *time.Time          `json:"expiry_timestamp"`
}

type ItemResponse struct {
	ID       uint    `json:"id"`
	MenuID   uint    `json:"menu_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID          uint               `json:"id"`
	CustomerID  uint               `json:"customer_id"`
	HandledBy   uint               `json:"handled_by"`
	OrderType   models.OrderType   `json:"order_type"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	OrderTime   string             `json:"order_timestamp"`
	Expiry      *string            `json:"expiry_timestamp"`
	OrderSource models.OrderSource `json:"order_source"`
	Items       []ItemResponse     `json:"items"`
}

func toResponse(o *models.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ID:       it.ID,
			MenuID:   it.MenuID,
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Subtotal(),
		})
	}

	var expiry *string
	if o.ExpiryTimestamp != nil {
		s := o.ExpiryTimestamp.Format(time.RFC3339)
		expiry = &s
	}

	return OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		HandledBy:   o.HandledBy,
		OrderType:   o.OrderType,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OrderTime:   o.OrderTimestamp.Format(time.RFC3339),
		Expiry:      expiry,
		OrderSource: o.OrderSource,
		Items:       items,
	}
}

// serviceError maps the aggregate's sentinel errors onto HTTP statuses.
// Reference failures surface as validation errors so the client sees which
// field was wrong.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	case errors.Is(err, ErrCustomerNotFound):
		return validation.Respond(c, validation.Errors{"customer_id": "customer does not exist"})
	case errors.Is(err, ErrHandlerNotFound):
		return validation.Respond(c, validation.Errors{"handled_by": "user does not exist"})
	case errors.Is(err, ErrMenuNotFound):
		return validation.Respond(c, validation.Errors{"items": "one or more menu items do not exist"})
	case errors.Is(err, ErrStatusConflict):
		return fiber.NewError(fiber.StatusConflict, "Order was modified concurrently, retry")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Could not process order")
	}
}

// POST /orders
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		if body.CustomerID == 0 {
			errs.Add("customer_id", "customer_id is required")
		}
		if body.HandledBy == 0 {
			errs.Add("handled_by", "handled_by is required")
		}
		if !body.OrderType.Valid() {
			errs.Add("order_type", "order_type must be dine-in or take-out")
		}
		if !body.OrderSource.Valid() {
			errs.Add("order_source", "order_source must be QR or COUNTER")
		}
		if len(body.Items) == 0 {
			errs.Add("items", "at least one item is required")
		}
		for i, it := range body.Items {
			if it.MenuID == 0 {
				errs.Add(fmt.Sprintf("items.%d.menu_id", i), "menu_id is required")
			}
			if it.Quantity < 1 {
				errs.Add(fmt.Sprintf("items.%d.quantity", i), "quantity must be at least 1")
			}
			if it.Price < 0 {
				errs.Add(fmt.Sprintf("items.%d.price", i), "price must not be negative")
			}
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		ord, err := Create(database.DB, CreateInput{
			CustomerID:      body.CustomerID,
			HandledBy:       body.HandledBy,
			OrderType:       body.OrderType,
			OrderSource:     body.OrderSource,
			ExpiryTimestamp: body.Expiry,
			Items:           body.Items,
		}, auth.ActorID(c))
		if err != nil {
			return serviceError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(ord))
	}
}

// GET /orders?page=&per_page=&status=&customer_id=
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		dbq := database.DB.Model(&models.Order{})
		if s := c.Query("status"); s != "" {
			if !models.OrderStatus(s).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "status is invalid")
			}
			dbq = dbq.Where("status = ?", s)
		}
		if s := c.Query("customer_id"); s != "" {
			var cid uint
			if _, err := fmt.Sscan(s, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id is invalid")
			}
			dbq = dbq.Where("customer_id = ?", cid)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count orders")
		}

		var orders []models.Order
		if err := dbq.Preload("Items").
			Order("order_timestamp DESC, id DESC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toResponse(&orders[i]))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /orders/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ord models.Order
		if err := database.DB.Preload("Items").Preload("Payments").
			First(&ord, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		return c.JSON(toResponse(&ord))
	}
}

// PUT /orders/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		errs := validation.Errors{}
		if body.OrderType != nil && !body.OrderType.Valid() {
			errs.Add("order_type", "order_type must be dine-in or take-out")
		}
		if body.Status != nil && !body.Status.Valid() {
			errs.Add("status", "status must be pending, preparing, ready or served")
		}
		if body.OrderSource != nil && !body.OrderSource.Valid() {
			errs.Add("order_source", "order_source must be QR or COUNTER")
		}
		if errs.Any() {
			return validation.Respond(c, errs)
		}

		ord, err := Update(database.DB, id, UpdateInput{
			CustomerID:      body.CustomerID,
			HandledBy:       body.HandledBy,
			OrderType:       body.OrderType,
			Status:          body.Status,
			OrderSource:     body.OrderSource,
			ExpiryTimestamp: body.Expiry,
		}, auth.ActorID(c))
		if err != nil {
			return serviceError(c, err)
		}

		return c.JSON(toResponse(ord))
	}
}

// POST /orders/:id/advance, the cashier "Next" action.
func AdvanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		ord, err := Advance(database.DB, id, auth.ActorID(c))
		if err != nil {
			return serviceError(c, err)
		}

		return c.JSON(toResponse(ord))
	}
}

// DELETE /orders/:id
func DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		if err := Delete(database.DB, id, auth.ActorID(c)); err != nil {
			return serviceError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
