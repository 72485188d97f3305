package order

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pos-backend/internal/models"
	"pos-backend/internal/testutil"
)

func seedOrderDeps(t *testing.T, db *gorm.DB) (*models.Customer, *models.User, *models.Menu) {
	t.Helper()
	cust := testutil.CreateCustomer(t, db, "5", "QR-5-1700000000")
	cashier := testutil.CreateUser(t, db, "cashier", models.RoleCashier)
	item := testutil.CreateMenu(t, db, "Sinigang", 125.00)
	return cust, cashier, item
}

func auditCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
	return n
}

func TestCreate(t *testing.T) {
	t.Run("persists order with items and recomputed total", func(t *testing.T) {
		db := testutil.SetupDB(t)
		cust, cashier, item := seedOrderDeps(t, db)

		ord, err := Create(db, CreateInput{
			CustomerID:  cust.ID,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeDineIn,
			OrderSource: models.OrderSourceQR,
			Items: []ItemInput{
				{MenuID: item.ID, Quantity: 2, Price: 125.00},
			},
		}, &cashier.ID)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusPending, ord.Status)
		assert.InDelta(t, 250.00, ord.TotalAmount, 0.001)
		assert.Len(t, ord.Items, 1)

		// total always reconciles with the stored items
		var stored models.Order
		require.NoError(t, db.Preload("Items").First(&stored, ord.ID).Error)
		assert.InDelta(t, stored.ItemTotal(), stored.TotalAmount, 0.001)

		assert.Equal(t, int64(1), auditCount(t, db))
		var entry models.AuditLog
		require.NoError(t, db.First(&entry).Error)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, cashier.ID, *entry.UserID)
		assert.Contains(t, entry.Action, "Created order")
	})

	t.Run("client supplied total is ignored", func(t *testing.T) {
		db := testutil.SetupDB(t)
		cust, cashier, item := seedOrderDeps(t, db)

		// two lines, the caller cannot influence the stored total
		ord, err := Create(db, CreateInput{
			CustomerID:  cust.ID,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeTakeOut,
			OrderSource: models.OrderSourceCounter,
			Items: []ItemInput{
				{MenuID: item.ID, Quantity: 3, Price: 100.00},
				{MenuID: item.ID, Quantity: 1, Price: 49.50},
			},
		}, &cashier.ID)
		require.NoError(t, err)
		assert.InDelta(t, 349.50, ord.TotalAmount, 0.001)
	})

	t.Run("unknown customer", func(t *testing.T) {
		db := testutil.SetupDB(t)
		_, cashier, item := seedOrderDeps(t, db)

		_, err := Create(db, CreateInput{
			CustomerID:  9999,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeDineIn,
			OrderSource: models.OrderSourceQR,
			Items:       []ItemInput{{MenuID: item.ID, Quantity: 1, Price: 125.00}},
		}, &cashier.ID)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
		assert.Zero(t, auditCount(t, db))
	})

	t.Run("unknown menu rolls the whole order back", func(t *testing.T) {
		db := testutil.SetupDB(t)
		cust, cashier, item := seedOrderDeps(t, db)

		_, err := Create(db, CreateInput{
			CustomerID:  cust.ID,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeDineIn,
			OrderSource: models.OrderSourceQR,
			Items: []ItemInput{
				{MenuID: item.ID, Quantity: 1, Price: 125.00},
				{MenuID: 9999, Quantity: 1, Price: 10.00},
			},
		}, &cashier.ID)
		assert.ErrorIs(t, err, ErrMenuNotFound)

		var orders int64
		require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
		assert.Zero(t, orders)
		assert.Zero(t, auditCount(t, db))
	})
}

func TestAdvance(t *testing.T) {
	db := testutil.SetupDB(t)
	cust, cashier, item := seedOrderDeps(t, db)

	ord, err := Create(db, CreateInput{
		CustomerID:  cust.ID,
		HandledBy:   cashier.ID,
		OrderType:   models.OrderTypeDineIn,
		OrderSource: models.OrderSourceQR,
		Items:       []ItemInput{{MenuID: item.ID, Quantity: 2, Price: 125.00}},
	}, &cashier.ID)
	require.NoError(t, err)

	expected := []models.OrderStatus{
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusServed,
	}
	for _, want := range expected {
		advanced, err := Advance(db, ord.ID, &cashier.ID)
		require.NoError(t, err)
		assert.Equal(t, want, advanced.Status)
	}

	// clamped: advancing a served order is a silent no-op
	logsBefore := auditCount(t, db)
	for i := 0; i < 3; i++ {
		advanced, err := Advance(db, ord.ID, &cashier.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusServed, advanced.Status)
	}
	assert.Equal(t, logsBefore, auditCount(t, db), "no-op advance must not write audit entries")

	_, err = Advance(db, 9999, &cashier.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAdvanceStatusConflict(t *testing.T) {
	db := testutil.SetupDB(t)
	cust, cashier, item := seedOrderDeps(t, db)

	ord, err := Create(db, CreateInput{
		CustomerID:  cust.ID,
		HandledBy:   cashier.ID,
		OrderType:   models.OrderTypeDineIn,
		OrderSource: models.OrderSourceQR,
		Items:       []ItemInput{{MenuID: item.ID, Quantity: 1, Price: 125.00}},
	}, &cashier.ID)
	require.NoError(t, err)

	logsBefore := auditCount(t, db)

	// Flip the row underneath Advance, after its read but before the
	// conditional update.
	fired := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test_race_status", func(q *gorm.DB) {
		if fired || q.Statement.Table != "orders" {
			return
		}
		if _, ok := q.Statement.Dest.(*models.Order); !ok {
			return
		}
		fired = true
		q.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET status = ? WHERE id = ?", models.OrderStatusPreparing, ord.ID)
	}))
	t.Cleanup(func() {
		require.NoError(t, db.Callback().Query().Remove("test_race_status"))
	})

	_, err = Advance(db, ord.ID, &cashier.ID)
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.True(t, fired)
	assert.Equal(t, logsBefore, auditCount(t, db), "a conflicted advance must not write audit entries")

	var fe *fiber.Error
	require.True(t, errors.As(serviceError(nil, ErrStatusConflict), &fe))
	assert.Equal(t, fiber.StatusConflict, fe.Code)

	// the whole transaction rolled back, nothing stepped
	var stored models.Order
	require.NoError(t, db.First(&stored, ord.ID).Error)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestUpdate(t *testing.T) {
	t.Run("partial update audits the changed fields", func(t *testing.T) {
		db := testutil.SetupDB(t)
		cust, cashier, item := seedOrderDeps(t, db)

		ord, err := Create(db, CreateInput{
			CustomerID:  cust.ID,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeDineIn,
			OrderSource: models.OrderSourceQR,
			Items:       []ItemInput{{MenuID: item.ID, Quantity: 1, Price: 125.00}},
		}, &cashier.ID)
		require.NoError(t, err)

		newType := models.OrderTypeTakeOut
		newStatus := models.OrderStatusPreparing
		updated, err := Update(db, ord.ID, UpdateInput{
			OrderType: &newType,
			Status:    &newStatus,
		}, &cashier.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderTypeTakeOut, updated.OrderType)
		assert.Equal(t, models.OrderStatusPreparing, updated.Status)
		assert.Equal(t, models.OrderSourceQR, updated.OrderSource, "unsupplied fields keep their value")

		var entry models.AuditLog
		require.NoError(t, db.Order("id DESC").First(&entry).Error)
		assert.Contains(t, entry.Action, "Updated order")
		assert.Contains(t, entry.Action, `"order_type":"take-out"`)
		assert.Contains(t, entry.Action, `"status":"preparing"`)
	})

	t.Run("unknown order", func(t *testing.T) {
		db := testutil.SetupDB(t)
		_, cashier, _ := seedOrderDeps(t, db)

		newType := models.OrderTypeTakeOut
		_, err := Update(db, 9999, UpdateInput{OrderType: &newType}, &cashier.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("unknown customer reference", func(t *testing.T) {
		db := testutil.SetupDB(t)
		cust, cashier, item := seedOrderDeps(t, db)

		ord, err := Create(db, CreateInput{
			CustomerID:  cust.ID,
			HandledBy:   cashier.ID,
			OrderType:   models.OrderTypeDineIn,
			OrderSource: models.OrderSourceQR,
			Items:       []ItemInput{{MenuID: item.ID, Quantity: 1, Price: 125.00}},
		}, &cashier.ID)
		require.NoError(t, err)

		bad := uint(9999)
		_, err = Update(db, ord.ID, UpdateInput{CustomerID: &bad}, &cashier.ID)
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})
}

func TestDelete(t *testing.T) {
	db := testutil.SetupDB(t)
	cust, cashier, item := seedOrderDeps(t, db)

	ord, err := Create(db, CreateInput{
		CustomerID:  cust.ID,
		HandledBy:   cashier.ID,
		OrderType:   models.OrderTypeDineIn,
		OrderSource: models.OrderSourceQR,
		Items:       []ItemInput{{MenuID: item.ID, Quantity: 2, Price: 125.00}},
	}, &cashier.ID)
	require.NoError(t, err)

	pay := models.Payment{
		OrderID:          ord.ID,
		AmountPaid:       250.00,
		PaymentMethod:    models.PaymentMethodCash,
		PaymentStatus:    models.PaymentStatusCompleted,
		PaymentTimestamp: ord.OrderTimestamp,
	}
	require.NoError(t, db.Create(&pay).Error)

	require.NoError(t, Delete(db, ord.ID, &cashier.ID))

	var orders, items, payments int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items, "order items must be removed with the order")
	assert.Zero(t, payments, "payments must be removed with the order")

	var last models.AuditLog
	require.NoError(t, db.Order("id DESC").First(&last).Error)
	assert.Contains(t, last.Action, "Deleted order")

	assert.ErrorIs(t, Delete(db, ord.ID, &cashier.ID), ErrOrderNotFound)
}
