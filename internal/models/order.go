package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
)

// OrderStatusFlow is the fixed forward sequence an order traverses.
var OrderStatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
}

func (s OrderStatus) Valid() bool {
	for _, f := range OrderStatusFlow {
		if s == f {
			return true
		}
	}
	return false
}

// Next returns the following status in the flow. Advancing past "served"
// stays clamped at "served".
func (s OrderStatus) Next() OrderStatus {
	for i, f := range OrderStatusFlow {
		if s == f {
			if i+1 < len(OrderStatusFlow) {
				return OrderStatusFlow[i+1]
			}
			return f
		}
	}
	return s
}

type OrderType string

const (
	OrderTypeDineIn  OrderType = "dine-in"
	OrderTypeTakeOut OrderType = "take-out"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeOut
}

type OrderSource string

const (
	OrderSourceQR      OrderSource = "QR"
	OrderSourceCounter OrderSource = "COUNTER"
)

func (s OrderSource) Valid() bool {
	return s == OrderSourceQR || s == OrderSourceCounter
}

type Order struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	// RESTRICT on both edges: order history must survive customer and user
	// administration.
	Customer        Customer    `gorm:"constraint:OnDelete:RESTRICT"`
	HandledBy       uint        `gorm:"index;not null"`
	Handler         User        `gorm:"foreignKey:HandledBy;constraint:OnDelete:RESTRICT"`
	OrderType       OrderType   `gorm:"size:20;not null"`
	Status          OrderStatus `gorm:"size:20;not null;default:'pending'"`
	TotalAmount     float64     `gorm:"not null"`
	OrderTimestamp  time.Time   `gorm:"not null"`
	ExpiryTimestamp *time.Time
	OrderSource     OrderSource `gorm:"size:10;not null"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Payments        []Payment   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem.Price is a snapshot of the menu price at order time, not a live
// reference to the menu row.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey"`
	OrderID  uint    `gorm:"index;not null"`
	MenuID   uint    `gorm:"index;not null"`
	Menu     Menu    `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity int     `gorm:"not null"`
	Price    float64 `gorm:"not null"`
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// ItemTotal sums the item subtotals. The stored TotalAmount is always derived
// from this, never taken from the client.
func (o *Order) ItemTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}
