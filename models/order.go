package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order, cancelled last.
var OrderStatuses = []OrderStatus{
	StatusPlaced, StatusConfirmed, StatusPreparing, StatusReady,
	StatusPickedUp, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "card"
	PaymentCash          PaymentMethod = "cash"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
}

// OrderItem is a snapshot of a product at checkout time.
type OrderItem struct {
	ProductID           uint              `json:"productId"`
	Name                string            `json:"name"`
	Price               decimal.Decimal   `json:"price"` // unit price including variant modifiers
	Quantity            int               `json:"quantity"`
	Variants            []SelectedVariant `json:"variants,omitempty"`
	SpecialInstructions string            `json:"specialInstructions,omitempty"`
}

type Pricing struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

type DeliveryAddress struct {
	Street       string       `json:"street"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	ZipCode      string       `json:"zipCode"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
}

// TimelineEntry is one line of the append-only status audit log.
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

type OrderRating struct {
	Food     int       `json:"food,omitempty"`
	Delivery int       `json:"delivery,omitempty"`
	Overall  int       `json:"overall"`
	Comment  string    `json:"comment,omitempty"`
	RatedAt  time.Time `json:"ratedAt"`
}

type Cancellation struct {
	Reason       string          `json:"reason,omitempty"`
	CancelledBy  UserRole        `json:"cancelledBy"`
	CancelledAt  time.Time       `json:"cancelledAt"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
}

type Order struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	OrderNumber           string          `json:"orderNumber" gorm:"uniqueIndex;not null"`
	CustomerID            uint            `json:"customerId" gorm:"not null;index:idx_orders_customer_created,priority:1"`
	Customer              *User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID          uint            `json:"restaurantId" gorm:"not null;index:idx_orders_restaurant_created,priority:1"`
	Restaurant            *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Items                 []OrderItem     `json:"items" gorm:"type:text;serializer:json"`
	Pricing               Pricing         `json:"pricing" gorm:"type:text;serializer:json"`
	Total                 decimal.Decimal `json:"-" gorm:"type:decimal(12,2);not null;default:0"` // copy of Pricing.Total for aggregation
	DeliveryAddress       DeliveryAddress `json:"deliveryAddress" gorm:"type:text;serializer:json"`
	Contact               Contact         `json:"contact" gorm:"type:text;serializer:json"`
	Payment               Payment         `json:"payment" gorm:"type:text;serializer:json"`
	PaymentStatus         PaymentStatus   `json:"-" gorm:"index"` // copy of Payment.Status for filtering
	Status                OrderStatus     `json:"status" gorm:"not null;default:'placed';index"`
	Timeline              []TimelineEntry `json:"timeline" gorm:"type:text;serializer:json"`
	EstimatedDeliveryTime time.Time       `json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time      `json:"actualDeliveryTime,omitempty"`
	SpecialInstructions   string          `json:"specialInstructions,omitempty"`
	Rating                *OrderRating    `json:"rating,omitempty" gorm:"type:text;serializer:json"`
	Cancellation          *Cancellation   `json:"cancellation,omitempty" gorm:"type:text;serializer:json"`
	Version               int             `json:"version" gorm:"not null;default:0"`
	CreatedAt             time.Time       `json:"createdAt" gorm:"index:idx_orders_customer_created,priority:2;index:idx_orders_restaurant_created,priority:2"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return !o.Status.Terminal()
}

// MarshalJSON adds the derived canCancel flag.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		CanCancel bool `json:"canCancel"`
	}{plain(o), o.CanCancel()})
}
