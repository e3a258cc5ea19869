package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
)

type orderLineRequest struct {
	Product             uint                     `json:"product" binding:"required"`
	Quantity            int                      `json:"quantity" binding:"required,min=1,max=50"`
	Variants            []services.VariantChoice `json:"variants"`
	SpecialInstructions string                   `json:"specialInstructions" binding:"max=200"`
}

type deliveryAddressRequest struct {
	Street       string              `json:"street" binding:"required"`
	City         string              `json:"city" binding:"required"`
	State        string              `json:"state"`
	ZipCode      string              `json:"zipCode" binding:"required"`
	Coordinates  *models.Coordinates `json:"coordinates"`
	Instructions string              `json:"instructions" binding:"max=200"`
}

type contactRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20"`
	Email string `json:"email" binding:"omitempty,email"`
}

type paymentRequest struct {
	Method models.PaymentMethod `json:"method" binding:"required,paymentmethod"`
}

// PlaceOrderRequest checks out the listed items, or the caller's cart when
// items is empty.
type PlaceOrderRequest struct {
	Restaurant          uint                   `json:"restaurant"`
	Items               []orderLineRequest     `json:"items" binding:"omitempty,dive"`
	DeliveryAddress     deliveryAddressRequest `json:"deliveryAddress"`
	Contact             contactRequest         `json:"contact"`
	Payment             paymentRequest         `json:"payment"`
	SpecialInstructions string                 `json:"specialInstructions" binding:"max=500"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,orderstatus"`
	Note   string             `json:"note" binding:"max=200"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type RateOrderRequest struct {
	Food     int    `json:"food" binding:"omitempty,min=1,max=5"`
	Delivery int    `json:"delivery" binding:"omitempty,min=1,max=5"`
	Overall  int    `json:"overall" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"max=500"`
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !h.bind(c, &req) {
		return
	}
	in := services.CreateOrderInput{
		RestaurantID: req.Restaurant,
		DeliveryAddress: models.DeliveryAddress{
			Street:       req.DeliveryAddress.Street,
			City:         req.DeliveryAddress.City,
			State:        req.DeliveryAddress.State,
			ZipCode:      req.DeliveryAddress.ZipCode,
			Coordinates:  req.DeliveryAddress.Coordinates,
			Instructions: req.DeliveryAddress.Instructions,
		},
		Contact:             models.Contact{Phone: req.Contact.Phone, Email: req.Contact.Email},
		PaymentMethod:       req.Payment.Method,
		SpecialInstructions: req.SpecialInstructions,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderLineInput{
			ProductID:           it.Product,
			Quantity:            it.Quantity,
			Variants:            it.Variants,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	order, err := h.svc.Orders.Create(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusCreated, "Order placed successfully", order)
}

// ListOrders returns the caller's orders: a customer's own, a restaurant's
// incoming, or every order for admins.
func (h *Handler) ListOrders(c *gin.Context) {
	orders, page, err := h.svc.Orders.List(c.Request.Context(), middleware.Actor(c), services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Page:   queryPage(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, orders, page)
}

// GetOrder returns a single order with its timeline
func (h *Handler) GetOrder(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	order, err := h.svc.Orders.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, order)
}

// UpdateOrderStatus moves an order to its next state
// Enforces state machine: only valid transitions are allowed
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	var req UpdateStatusRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.Transition(c.Request.Context(), middleware.Actor(c), id, req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Order status updated successfully", order)
}

// CancelOrder cancels an order that is not yet delivered
func (h *Handler) CancelOrder(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.Cancel(c.Request.Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Order cancelled successfully", order)
}

// RateOrder records the customer's rating of a delivered order
func (h *Handler) RateOrder(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	var req RateOrderRequest
	if !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.Rate(c.Request.Context(), middleware.Actor(c), id, services.RatingInput{
		Food:     req.Food,
		Delivery: req.Delivery,
		Overall:  req.Overall,
		Comment:  req.Comment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Thank you for your rating", order)
}

// OrderQRCode renders the order's tracking link as a PNG.
func (h *Handler) OrderQRCode(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Order")
	if !valid {
		return
	}
	png, err := h.svc.Orders.TrackingQR(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// OrderSummary counts the caller's orders by status for the dashboard
func (h *Handler) OrderSummary(c *gin.Context) {
	summary, err := h.svc.Orders.Summary(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, summary)
}
