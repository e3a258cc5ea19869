package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RestaurantStatus string

const (
	RestaurantPending   RestaurantStatus = "pending"
	RestaurantApproved  RestaurantStatus = "approved"
	RestaurantRejected  RestaurantStatus = "rejected"
	RestaurantSuspended RestaurantStatus = "suspended"
)

func (s RestaurantStatus) Valid() bool {
	switch s {
	case RestaurantPending, RestaurantApproved, RestaurantRejected, RestaurantSuspended:
		return true
	}
	return false
}

// Cuisines accepted for a restaurant.
var Cuisines = []string{
	"American", "Italian", "Japanese", "Mexican", "Thai",
	"Indian", "Chinese", "Mediterranean", "French", "Other",
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Address struct {
	Street      string       `json:"street"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	ZipCode     string       `json:"zipCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Images struct {
	Logo    string   `json:"logo,omitempty"`
	Banner  string   `json:"banner,omitempty"`
	Gallery []string `json:"gallery,omitempty"`
}

type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// OperatingHours is keyed by lower-case weekday name.
type OperatingHours map[string]DayHours

// DeliveryInfo is the restaurant's fee schedule.
type DeliveryInfo struct {
	DeliveryFee           decimal.Decimal `json:"deliveryFee" gorm:"column:delivery_fee;type:decimal(10,2);default:0"`
	MinimumOrder          decimal.Decimal `json:"minimumOrder" gorm:"column:minimum_order;type:decimal(10,2);default:0"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime" gorm:"column:estimated_delivery_time"`
	DeliveryRadius        float64         `json:"deliveryRadius" gorm:"column:delivery_radius;default:10"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Restaurant struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	OwnerID        uint             `json:"ownerId" gorm:"not null;index"`
	Owner          *User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name           string           `json:"name" gorm:"not null"`
	Description    string           `json:"description"`
	Cuisine        string           `json:"cuisine" gorm:"index"`
	Contact        Contact          `json:"contact" gorm:"type:text;serializer:json"`
	Address        Address          `json:"address" gorm:"type:text;serializer:json"`
	Images         Images           `json:"images" gorm:"type:text;serializer:json"`
	OperatingHours OperatingHours   `json:"operatingHours,omitempty" gorm:"type:text;serializer:json"`
	DeliveryInfo   DeliveryInfo     `json:"deliveryInfo" gorm:"embedded"`
	Rating         Rating           `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Status         RestaurantStatus `json:"status" gorm:"not null;default:'pending';index"`
	IsOpen         bool             `json:"isOpen"`
	Featured       bool             `json:"featured" gorm:"default:false"`
	Tags           []string         `json:"tags,omitempty" gorm:"type:text;serializer:json"`
	TotalOrders    int              `json:"totalOrders" gorm:"default:0"`
	TotalRevenue   decimal.Decimal  `json:"totalRevenue" gorm:"type:decimal(12,2);default:0"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// IsApproved reports whether the restaurant is publicly visible.
func (r *Restaurant) IsApproved() bool {
	return r.Status == RestaurantApproved
}
