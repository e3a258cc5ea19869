package handlers

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
)

type dayHoursRequest struct {
	Open   string `json:"open" binding:"omitempty,hhmm"`
	Close  string `json:"close" binding:"omitempty,hhmm"`
	Closed bool   `json:"closed"`
}

type RestaurantRequest struct {
	Name           *string                    `json:"name" binding:"omitempty,min=2,max=100"`
	Description    *string                    `json:"description" binding:"omitempty,max=500"`
	Cuisine        *string                    `json:"cuisine" binding:"omitempty,cuisine"`
	Contact        *models.Contact            `json:"contact"`
	Address        *models.Address            `json:"address"`
	Images         *models.Images             `json:"images"`
	OperatingHours map[string]dayHoursRequest `json:"operatingHours" binding:"omitempty,dive,keys,oneof=monday tuesday wednesday thursday friday saturday sunday,endkeys"`
	DeliveryInfo   *models.DeliveryInfo       `json:"deliveryInfo"`
	IsOpen         *bool                      `json:"isOpen"`
	Featured       *bool                      `json:"featured"`
	Tags           []string                   `json:"tags"`
}

func (r RestaurantRequest) input() services.RestaurantInput {
	in := services.RestaurantInput{
		Name:         r.Name,
		Description:  r.Description,
		Cuisine:      r.Cuisine,
		Contact:      r.Contact,
		Address:      r.Address,
		Images:       r.Images,
		DeliveryInfo: r.DeliveryInfo,
		IsOpen:       r.IsOpen,
		Featured:     r.Featured,
		Tags:         r.Tags,
	}
	if r.OperatingHours != nil {
		in.OperatingHours = make(models.OperatingHours, len(r.OperatingHours))
		for day, h := range r.OperatingHours {
			in.OperatingHours[day] = models.DayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
		}
	}
	return in
}

// ListRestaurants returns approved restaurants (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, page, err := h.svc.Restaurants.List(c.Request.Context(), services.RestaurantFilter{
		Cuisine:  c.Query("cuisine"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
		Featured: queryBool(c, "featured"),
		IsOpen:   queryBool(c, "isOpen"),
		Page:     queryPage(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, restaurants, page)
}

// GetRestaurant returns a single restaurant. Unapproved restaurants are
// visible to their owner and admins only.
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Restaurant")
	if !valid {
		return
	}
	r, err := h.svc.Restaurants.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}

// GetMenu returns the menu for a specific restaurant
func (h *Handler) GetMenu(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Restaurant")
	if !valid {
		return
	}
	products, err := h.svc.Restaurants.Menu(c.Request.Context(), middleware.Actor(c), id, services.MenuFilter{
		Category:  c.Query("category"),
		Available: queryBoolDefault(c, "available", true),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, products)
}

// CreateRestaurant registers the caller's restaurant for admin approval
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.svc.Restaurants.Create(c.Request.Context(), middleware.Actor(c), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusCreated, "Restaurant created successfully. Waiting for admin approval.", r)
}

// UpdateRestaurant lets the owner update restaurant details
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, valid := h.idParam(c, "id", "Restaurant")
	if !valid {
		return
	}
	var req RestaurantRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.svc.Restaurants.Update(c.Request.Context(), middleware.Actor(c), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	done(c, http.StatusOK, "Restaurant updated successfully", r)
}

// MyRestaurant returns the logged-in owner's restaurant, approved or not
func (h *Handler) MyRestaurant(c *gin.Context) {
	r, err := h.svc.Restaurants.Mine(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, r)
}
