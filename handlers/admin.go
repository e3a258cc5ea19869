package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
)

type RestaurantStatusRequest struct {
	Status models.RestaurantStatus `json:"status" binding:"required,oneof=pending approved rejected suspended"`
}

type ForceStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,orderstatus"`
	Reason string             `json:"reason" binding:"max=500"`
}

// AdminStats returns platform counts and the latest orders (admin only)
func (h *Handler) AdminStats(c *gin.Context) {
	d, err := h.svc.Admin.Stats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, d)
}

// AdminUsers lists users, filtered by role or a name/email search (admin only)
func (h *Handler) AdminUsers(c *gin.Context) {
	users, page, err := h.svc.Admin.Users(c.Request.Context(), middleware.Actor(c), services.UserFilter{
		Role:   models.UserRole(c.Query("role")),
		Search: c.Query("search"),
		Page:   queryPage(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, users, page)
}

// AdminRestaurants lists restaurants in any status (admin only)
func (h *Handler) AdminRestaurants(c *gin.Context) {
	restaurants, page, err := h.svc.Admin.Restaurants(c.Request.Context(), middleware.Actor(c), services.RestaurantAdminFilter{
		Status: models.RestaurantStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   queryPage(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, restaurants, page)
}

// AdminSetRestaurantStatus approves, rejects or suspends a restaurant
func (h *Handler) AdminSetRestaurantStatus(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Restaurant")
	if !valid {
		return
	}
	var req RestaurantStatusRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.svc.Admin.SetRestaurantStatus(c.Request.Context(), middleware.Actor(c), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Restaurant status updated successfully", r)
}

// AdminOrders returns all orders, filtered by status or order number (admin only)
func (h *Handler) AdminOrders(c *gin.Context) {
	orders, page, err := h.svc.Admin.Orders(c.Request.Context(), middleware.Actor(c), services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   queryPage(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, orders, page)
}

// AdminForceOrderStatus lets admin override an order's state (emergency use).
// Terminal orders stay terminal.
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	var req ForceStatusRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.ForceStatus(c.Request.Context(), middleware.Actor(c), id, req.Status, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Order status overridden by admin", order)
}
