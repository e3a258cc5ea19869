package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type availabilityRequest struct {
	IsAvailable   bool     `json:"isAvailable"`
	AvailableFrom string   `json:"availableFrom" binding:"omitempty,hhmm"`
	AvailableTo   string   `json:"availableTo" binding:"omitempty,hhmm"`
	AvailableDays []string `json:"availableDays" binding:"omitempty,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

type ProductRequest struct {
	Restaurant      uint                    `json:"restaurant"`
	Name            *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	Price           *decimal.Decimal        `json:"price"`
	Category        *string                 `json:"category" binding:"omitempty,category"`
	Images          []string                `json:"images"`
	Ingredients     []string                `json:"ingredients"`
	Allergens       []string                `json:"allergens"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
	Dietary         []string                `json:"dietary" binding:"omitempty,dive,oneof=vegetarian vegan gluten-free dairy-free nut-free keto low-carb halal kosher"`
	Availability    *availabilityRequest    `json:"availability"`
	Variants        []models.VariantGroup   `json:"variants"`
	PreparationTime *int                    `json:"preparationTime" binding:"omitempty,gte=0"`
	IsPopular       *bool                   `json:"isPopular"`
	Tags            []string                `json:"tags"`
}

func (r ProductRequest) input() services.ProductInput {
	in := services.ProductInput{
		RestaurantID:    r.Restaurant,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Category:        r.Category,
		Images:          r.Images,
		Ingredients:     r.Ingredients,
		Allergens:       r.Allergens,
		NutritionalInfo: r.NutritionalInfo,
		Dietary:         r.Dietary,
		Variants:        r.Variants,
		PreparationTime: r.PreparationTime,
		IsPopular:       r.IsPopular,
		Tags:            r.Tags,
	}
	if a := r.Availability; a != nil {
		in.Availability = &models.Availability{
			IsAvailable:   a.IsAvailable,
			AvailableFrom: a.AvailableFrom,
			AvailableTo:   a.AvailableTo,
			AvailableDays: a.AvailableDays,
		}
	}
	return in
}

// ListProducts searches products of approved restaurants
func (h *Handler) ListProducts(c *gin.Context) {
	f := services.ProductFilter{
		RestaurantID: uint(queryInt(c, "restaurant")),
		Category:     c.Query("category"),
		Dietary:      queryList(c, "dietary"),
		Search:       c.Query("search"),
		Available:    queryBoolDefault(c, "available", true),
		SortBy:       c.Query("sortBy"),
		Order:        c.Query("order"),
		Page:         queryPage(c),
	}
	products, page, err := h.svc.Products.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, products, page)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Product")
	if !valid {
		return
	}
	p, err := h.svc.Products.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, p)
}

// CreateProduct adds a product to the caller's restaurant
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.Products.Create(c.Request.Context(), middleware.Actor(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusCreated, "Product created successfully", p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Product")
	if !valid {
		return
	}
	var req ProductRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.Products.Update(c.Request.Context(), middleware.Actor(c), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Product updated successfully", p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Product")
	if !valid {
		return
	}
	if err := h.svc.Products.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Product deleted successfully", nil)
}
