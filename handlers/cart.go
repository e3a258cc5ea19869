package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
)

type AddToCartRequest struct {
	ProductID           uint                     `json:"productId" binding:"required"`
	Quantity            int                      `json:"quantity" binding:"required,min=1,max=50"`
	Variants            []services.VariantChoice `json:"variants" binding:"omitempty,dive"`
	SpecialInstructions string                   `json:"specialInstructions" binding:"max=200"`
}

type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=50"`
}

// GetCart returns the caller's cart with live prices
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.svc.Carts.Get(c.Request.Context(), middleware.Actor(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, cart)
}

// AddToCart adds a product. Adding from another restaurant starts a new cart.
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if !h.bind(c, &req) {
		return
	}
	cart, err := h.svc.Carts.AddItem(c.Request.Context(), middleware.Actor(c).UserID, services.AddItemInput{
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		Variants:            req.Variants,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Item added to cart", cart)
}

// UpdateCartItem sets an item's quantity; zero removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartRequest
	if !h.bind(c, &req) {
		return
	}
	cart, err := h.svc.Carts.UpdateQuantity(c.Request.Context(), middleware.Actor(c).UserID, c.Param("itemId"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Cart updated successfully", cart)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	cart, err := h.svc.Carts.RemoveItem(c.Request.Context(), middleware.Actor(c).UserID, c.Param("itemId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Item removed from cart", cart)
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.svc.Carts.Clear(c.Request.Context(), middleware.Actor(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Cart cleared successfully", cart)
}
