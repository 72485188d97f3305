package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusNext(t *testing.T) {
	assert.Equal(t, OrderStatusPreparing, OrderStatusPending.Next())
	assert.Equal(t, OrderStatusReady, OrderStatusPreparing.Next())
	assert.Equal(t, OrderStatusServed, OrderStatusReady.Next())

	// advancing served stays served, repeatedly
	s := OrderStatusServed
	for i := 0; i < 5; i++ {
		s = s.Next()
		assert.Equal(t, OrderStatusServed, s)
	}
}

func TestOrderStatusNextIsMonotonic(t *testing.T) {
	for i, s := range OrderStatusFlow {
		next := s.Next()
		wantIdx := i + 1
		if wantIdx >= len(OrderStatusFlow) {
			wantIdx = len(OrderStatusFlow) - 1
		}
		assert.Equal(t, OrderStatusFlow[wantIdx], next)
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatusFlow {
		assert.True(t, s.Valid())
	}
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, OrderTypeDineIn.Valid())
	assert.True(t, OrderTypeTakeOut.Valid())
	assert.False(t, OrderType("delivery").Valid())

	assert.True(t, OrderSourceQR.Valid())
	assert.True(t, OrderSourceCounter.Valid())
	assert.False(t, OrderSource("APP").Valid())

	assert.True(t, PaymentMethodGcash.Valid())
	assert.False(t, PaymentMethod("check").Valid())

	assert.True(t, PaymentStatusCompleted.Valid())
	assert.False(t, PaymentStatus("refunded").Valid())

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("Manager").Valid())
}

func TestOrderItemTotal(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{Quantity: 2, Price: 125.00},
			{Quantity: 1, Price: 60.50},
			{Quantity: 3, Price: 10.00},
		},
	}
	assert.InDelta(t, 340.50, order.ItemTotal(), 0.001)

	empty := Order{}
	assert.Zero(t, empty.ItemTotal())
}
