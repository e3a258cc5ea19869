package routes

import (
	"net/http"

	"github.com/Shashank-1177/SBFood/handlers"
	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the engine with logging, recovery and CORS in front of
// every route.
func NewRouter(log zerolog.Logger, corsOrigin string, h *handlers.Handler, tokens *middleware.Tokens) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(), middleware.CORS(corsOrigin))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
	SetupRoutes(r, h, tokens)
	return r, nil
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, tokens *middleware.Tokens) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the SB Foods API",
			"docs":    "/api/state-machine",
			"health":  "/api/health",
			"roles":   []models.UserRole{models.RoleCustomer, models.RoleRestaurant, models.RoleAdmin},
		})
	})

	api := r.Group("/api")
	authed := tokens.AuthRequired()
	optional := tokens.OptionalAuth()
	owners := middleware.RoleRequired(models.RoleRestaurant, models.RoleAdmin)

	// ── Public routes ──────────────────────────────────────────────
	{
		api.GET("/health", h.Health)
		api.GET("/state-machine", h.GetStateMachineInfo)

		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// Unapproved restaurants and their products are shown to owners
		// and admins, so these reads look at the token when one is sent.
		api.GET("/restaurants", h.ListRestaurants)
		api.GET("/restaurants/:id", optional, h.GetRestaurant)
		api.GET("/restaurants/:id/menu", optional, h.GetMenu)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", optional, h.GetProduct)
	}

	// ── Authenticated routes ───────────────────────────────────────
	api.GET("/auth/me", authed, h.Me)

	cart := api.Group("/cart", authed)
	{
		cart.GET("", h.GetCart)
		cart.POST("/add", h.AddToCart)
		cart.PUT("/update/:itemId", h.UpdateCartItem)
		cart.DELETE("/remove/:itemId", h.RemoveCartItem)
		cart.DELETE("/clear", h.ClearCart)
	}

	// Order visibility and transitions are checked per order by the service.
	orders := api.Group("/orders", authed)
	{
		orders.POST("", middleware.RoleRequired(models.RoleCustomer), h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/summary", h.OrderSummary)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/qrcode", h.OrderQRCode)
		orders.PUT("/:id/status", owners, h.UpdateOrderStatus)
		orders.PUT("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/rating", middleware.RoleRequired(models.RoleCustomer), h.RateOrder)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	restaurants := api.Group("/restaurants", authed, owners)
	{
		restaurants.GET("/mine", h.MyRestaurant)
		restaurants.POST("", h.CreateRestaurant)
		restaurants.PUT("/:id", h.UpdateRestaurant)
	}
	products := api.Group("/products", authed, owners)
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("/admin", authed, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/users", h.AdminUsers)
		admin.GET("/restaurants", h.AdminRestaurants)
		admin.PUT("/restaurants/:id/status", h.AdminSetRestaurantStatus)
		admin.GET("/orders", h.AdminOrders)
		admin.PUT("/orders/:id/status", h.AdminForceOrderStatus)
	}
}
