// Package access decides whether a caller may perform an action on a resource.
// Decisions are pure: callers load whatever ownership data a resource needs.
package access

import (
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"
)

type Action string

const (
	Read       Action = "read"
	Mutate     Action = "mutate"
	Transition Action = "transition"
	Cancel     Action = "cancel"
	Rate       Action = "rate"
)

// Actor is the authenticated caller. The zero value is an anonymous caller.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) Anonymous() bool { return a.UserID == 0 }

func (a Actor) IsAdmin() bool { return !a.Anonymous() && a.Role == models.RoleAdmin }

// Resource is anything the gate knows how to judge.
type Resource interface {
	resource()
}

// Order carries the ownership relations of an order.
type Order struct {
	CustomerID        uint
	RestaurantOwnerID uint
	CanCancel         bool
}

type Restaurant struct {
	OwnerID  uint
	Approved bool
}

type Product struct {
	RestaurantOwnerID  uint
	RestaurantApproved bool
}

// AdminArea covers global stats, user listing and restaurant approval.
type AdminArea struct{}

func (Order) resource()      {}
func (Restaurant) resource() {}
func (Product) resource()    {}
func (AdminArea) resource()  {}

// OrderOf builds the gate view of an order. The order's Restaurant must be loaded.
func OrderOf(o *models.Order) Order {
	r := Order{CustomerID: o.CustomerID, CanCancel: o.CanCancel()}
	if o.Restaurant != nil {
		r.RestaurantOwnerID = o.Restaurant.OwnerID
	}
	return r
}

func RestaurantOf(r *models.Restaurant) Restaurant {
	return Restaurant{OwnerID: r.OwnerID, Approved: r.IsApproved()}
}

// ProductOf builds the gate view of a product. The product's Restaurant must be loaded.
func ProductOf(p *models.Product) Product {
	v := Product{}
	if p.Restaurant != nil {
		v.RestaurantOwnerID = p.Restaurant.OwnerID
		v.RestaurantApproved = p.Restaurant.IsApproved()
	}
	return v
}

// CanAccess returns nil when allowed, otherwise an Unauthenticated or Forbidden error.
func CanAccess(actor Actor, res Resource, action Action) error {
	switch r := res.(type) {
	case Order:
		return orderAccess(actor, r, action)
	case Restaurant:
		return ownedAccess(actor, r.OwnerID, r.Approved, action, "restaurant")
	case Product:
		return ownedAccess(actor, r.RestaurantOwnerID, r.RestaurantApproved, action, "product")
	case AdminArea:
		if actor.Anonymous() {
			return apperr.Unauthenticated("Authentication required")
		}
		if !actor.IsAdmin() {
			return apperr.Forbidden("Admin access required")
		}
		return nil
	}
	return apperr.Forbidden("Access denied")
}

func orderAccess(actor Actor, o Order, action Action) error {
	if actor.Anonymous() {
		return apperr.Unauthenticated("Authentication required")
	}
	if actor.IsAdmin() {
		if action == Rate {
			return apperr.Forbidden("Only the customer can rate this order")
		}
		return nil
	}
	isCustomer := actor.UserID == o.CustomerID
	isOwner := o.RestaurantOwnerID != 0 && actor.UserID == o.RestaurantOwnerID

	switch action {
	case Read:
		if isCustomer || isOwner {
			return nil
		}
		return apperr.Forbidden("Not authorized to view this order")
	case Transition:
		if isOwner {
			return nil
		}
		return apperr.Forbidden("Not authorized to update this order")
	case Cancel:
		if isCustomer && !o.CanCancel {
			return apperr.Forbidden("Order can no longer be cancelled")
		}
		if isCustomer || isOwner {
			return nil
		}
		return apperr.Forbidden("Not authorized to cancel this order")
	case Rate:
		if isCustomer {
			return nil
		}
		return apperr.Forbidden("Only the customer can rate this order")
	}
	return apperr.Forbidden("Not authorized")
}

func ownedAccess(actor Actor, ownerID uint, public bool, action Action, what string) error {
	if action == Read && public {
		return nil
	}
	if actor.Anonymous() {
		if action == Read {
			return apperr.Forbidden("Not authorized to view this %s", what)
		}
		return apperr.Unauthenticated("Authentication required")
	}
	if actor.IsAdmin() || actor.UserID == ownerID {
		return nil
	}
	if action == Read {
		return apperr.Forbidden("Not authorized to view this %s", what)
	}
	return apperr.Forbidden("Not authorized to modify this %s", what)
}
