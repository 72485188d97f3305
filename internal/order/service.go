package order

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pos-backend/internal/audit"
	"pos-backend/internal/metrics"
	"pos-backend/internal/models"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrHandlerNotFound  = errors.New("handling user not found")
	ErrMenuNotFound     = errors.New("menu item not found")
	ErrStatusConflict   = errors.New("order status changed concurrently")
)

type ItemInput struct {
	MenuID   uint    `json:"menu_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CreateInput struct {
	CustomerID      uint
	HandledBy       uint
	OrderType       models.OrderType
	OrderSource     models.OrderSource
	ExpiryTimestamp *time.Time
	Items           []ItemInput
}

type UpdateInput struct {
	CustomerID      *uint
	HandledBy       *uint
	OrderType       *models.OrderType
	Status          *models.OrderStatus
	OrderSource     *models.OrderSource
	ExpiryTimestamp *time.Time
}

// Create persists the order with its line items and one audit entry in a
// single transaction. TotalAmount is recomputed from the items: a
// client-supplied total is never trusted.
func Create(db *gorm.DB, in CreateInput, actorID *uint) (*models.Order, error) {
	var created models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Customer{}, in.CustomerID).Error; err != nil {
			return ErrCustomerNotFound
		}
		if err := tx.First(&models.User{}, in.HandledBy).Error; err != nil {
			return ErrHandlerNotFound
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			if err := tx.First(&models.Menu{}, it.MenuID).Error; err != nil {
				return errors.Wrapf(ErrMenuNotFound, "menu_id %d", it.MenuID)
			}
			items = append(items, models.OrderItem{
				MenuID:   it.MenuID,
				Quantity: it.Quantity,
				Price:    it.Price,
			})
		}

		created = models.Order{
			CustomerID:      in.CustomerID,
			HandledBy:       in.HandledBy,
			OrderType:       in.OrderType,
			Status:          models.OrderStatusPending,
			OrderTimestamp:  time.Now(),
			ExpiryTimestamp: in.ExpiryTimestamp,
			OrderSource:     in.OrderSource,
			Items:           items,
		}
		created.TotalAmount = created.ItemTotal()

		if err := tx.Create(&created).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		action := fmt.Sprintf("Created order #%d for customer #%d (%d items, total %.2f)",
			created.ID, created.CustomerID, len(created.Items), created.TotalAmount)
		return audit.Record(tx, actorID, action)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	return &created, nil
}

// Update applies the supplied subset of fields. The audit entry carries the
// changed-field diff. Status set directly through here must still be a legal
// flow value; stepping is done by Advance.
func Update(db *gorm.DB, id uint, in UpdateInput, actorID *uint) (*models.Order, error) {
	var updated models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.First(&ord, id).Error; err != nil {
			return ErrOrderNotFound
		}

		changes := map[string]any{}
		if in.CustomerID != nil {
			if err := tx.First(&models.Customer{}, *in.CustomerID).Error; err != nil {
				return ErrCustomerNotFound
			}
			changes["customer_id"] = *in.CustomerID
		}
		if in.HandledBy != nil {
			if err := tx.First(&models.User{}, *in.HandledBy).Error; err != nil {
				return ErrHandlerNotFound
			}
			changes["handled_by"] = *in.HandledBy
		}
		if in.OrderType != nil {
			changes["order_type"] = *in.OrderType
		}
		if in.Status != nil {
			changes["status"] = *in.Status
		}
		if in.OrderSource != nil {
			changes["order_source"] = *in.OrderSource
		}
		if in.ExpiryTimestamp != nil {
			changes["expiry_timestamp"] = *in.ExpiryTimestamp
		}

		if len(changes) > 0 {
			// Conditional on the status we read, so concurrent writers cannot
			// silently clobber each other on multi-field updates.
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", ord.ID, ord.Status).
				Updates(changes)
			if res.Error != nil {
				return errors.Wrap(res.Error, "update order")
			}
			if res.RowsAffected == 0 {
				return ErrStatusConflict
			}
		}

		if err := tx.Preload("Items").Preload("Payments").First(&updated, ord.ID).Error; err != nil {
			return errors.Wrap(err, "reload order")
		}

		action := fmt.Sprintf("Updated order #%d: %s", ord.ID, audit.FieldDiff(changes))
		return audit.Record(tx, actorID, action)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Advance moves the order one step along the status flow. Advancing a served
// order is a no-op that writes no audit entry. The update is conditional on
// the status that was read, so two racing advances cannot both step.
func Advance(db *gorm.DB, id uint, actorID *uint) (*models.Order, error) {
	var advanced models.Order
	stepped := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.First(&ord, id).Error; err != nil {
			return ErrOrderNotFound
		}

		next := ord.Status.Next()
		if next == ord.Status {
			advanced = ord
			return nil
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", ord.ID, ord.Status).
			Update("status", next)
		if res.Error != nil {
			return errors.Wrap(res.Error, "advance order")
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if err := tx.First(&advanced, ord.ID).Error; err != nil {
			return errors.Wrap(err, "reload order")
		}

		stepped = true
		action := fmt.Sprintf("Updated order #%d: %s", ord.ID,
			audit.FieldDiff(map[string]any{"status": next}))
		return audit.Record(tx, actorID, action)
	})
	if err != nil {
		return nil, err
	}

	if stepped {
		metrics.OrderStatusAdvanced.Inc()
	}
	return &advanced, nil
}

// Delete removes the order with its items and payments, and audits the
// removal. Irreversible, no soft delete.
func Delete(db *gorm.DB, id uint, actorID *uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.First(&ord, id).Error; err != nil {
			return ErrOrderNotFound
		}

		// Children explicitly first; the FK cascade is a backstop.
		if err := tx.Where("order_id = ?", ord.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return errors.Wrap(err, "delete order items")
		}
		if err := tx.Where("order_id = ?", ord.ID).Delete(&models.Payment{}).Error; err != nil {
			return errors.Wrap(err, "delete order payments")
		}
		if err := tx.Delete(&ord).Error; err != nil {
			return errors.Wrap(err, "delete order")
		}

		action := fmt.Sprintf("Deleted order #%d (customer #%d, total %.2f)",
			ord.ID, ord.CustomerID, ord.TotalAmount)
		return audit.Record(tx, actorID, action)
	})
}
