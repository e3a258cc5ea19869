package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categories accepted for a product.
var Categories = []string{
	"Appetizers", "Main Course", "Desserts", "Beverages", "Sides", "Salads",
	"Soups", "Burgers", "Pizza", "Pasta", "Sandwiches", "Other",
}

// Availability is the product's time-of-day and day-of-week window.
type Availability struct {
	IsAvailable   bool     `json:"isAvailable" gorm:"column:is_available;index"`
	AvailableFrom string   `json:"availableFrom,omitempty" gorm:"column:available_from"`
	AvailableTo   string   `json:"availableTo,omitempty" gorm:"column:available_to"`
	AvailableDays []string `json:"availableDays,omitempty" gorm:"column:available_days;type:text;serializer:json"`
}

// At reports whether the window is open at t. Empty days or an empty
// window mean no restriction; a window whose end is before its start wraps
// past midnight.
func (a Availability) At(t time.Time) bool {
	if !a.IsAvailable {
		return false
	}
	if len(a.AvailableDays) > 0 {
		today := strings.ToLower(t.Weekday().String())
		found := false
		for _, d := range a.AvailableDays {
			if strings.ToLower(d) == today {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if a.AvailableFrom == "" || a.AvailableTo == "" {
		return true
	}
	now := t.Format("15:04")
	if a.AvailableFrom <= a.AvailableTo {
		return now >= a.AvailableFrom && now < a.AvailableTo
	}
	return now >= a.AvailableFrom || now < a.AvailableTo
}

type VariantOption struct {
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"priceModifier"`
}

// VariantGroup is a named choice such as "Size" with its options.
type VariantGroup struct {
	Name    string          `json:"name"`
	Options []VariantOption `json:"options"`
}

type NutritionalInfo struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	RestaurantID    uint            `json:"restaurantId" gorm:"not null;index"`
	Restaurant      *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Name            string          `json:"name" gorm:"not null"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category        string          `json:"category" gorm:"index"`
	Images          []string        `json:"images,omitempty" gorm:"type:text;serializer:json"`
	Ingredients     []string        `json:"ingredients,omitempty" gorm:"type:text;serializer:json"`
	Allergens       []string        `json:"allergens,omitempty" gorm:"type:text;serializer:json"`
	NutritionalInfo NutritionalInfo `json:"nutritionalInfo" gorm:"type:text;serializer:json"`
	Dietary         []string        `json:"dietary,omitempty" gorm:"type:text;serializer:json"`
	Availability    Availability    `json:"availability" gorm:"embedded"`
	Variants        []VariantGroup  `json:"variants,omitempty" gorm:"type:text;serializer:json"`
	Rating          Rating          `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	PreparationTime int             `json:"preparationTime" gorm:"default:15"`
	IsPopular       bool            `json:"isPopular" gorm:"default:false"`
	OrderCount      int             `json:"orderCount" gorm:"default:0"`
	Tags            []string        `json:"tags,omitempty" gorm:"type:text;serializer:json"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FindOption looks up a variant option by group and option name.
func (p *Product) FindOption(group, option string) (VariantOption, bool) {
	for _, g := range p.Variants {
		if !strings.EqualFold(g.Name, group) {
			continue
		}
		for _, o := range g.Options {
			if strings.EqualFold(o.Name, option) {
				return o, true
			}
		}
	}
	return VariantOption{}, false
}
