package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectedVariant is a chosen option with the modifier resolved from the product.
type SelectedVariant struct {
	Name          string          `json:"name"`
	Option        string          `json:"option"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

type CartItem struct {
	ID                  string            `json:"id"`
	ProductID           uint              `json:"productId"`
	Quantity            int               `json:"quantity"`
	Variants            []SelectedVariant `json:"variants,omitempty"`
	SpecialInstructions string            `json:"specialInstructions,omitempty"`
	AddedAt             time.Time         `json:"addedAt"`
}

// Cart is stored as one document per user; all items share RestaurantID.
type Cart struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"userId" gorm:"uniqueIndex;not null"`
	RestaurantID *uint      `json:"restaurantId"`
	Items        []CartItem `json:"items" gorm:"type:text;serializer:json"`
	Version      int        `json:"version" gorm:"not null;default:0"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ItemIndex returns the position of the item with the given id, or -1.
func (c *Cart) ItemIndex(itemID string) int {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
