package services

import (
	"testing"
	"time"

	"github.com/Shashank-1177/SBFood/access"
	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/events"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Monday noon.
var testClock = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	svc    *Services
	events *events.Recorder

	customer   access.Actor
	stranger   access.Actor
	owner      access.Actor
	otherOwner access.Actor
	admin      access.Actor

	restaurant *models.Restaurant
	rival      *models.Restaurant
	burger     *models.Product
	fries      *models.Product
	sushi      *models.Product
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.DBConfig{Driver: "sqlite", DSN: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	db := newTestDB(t)
	rec := &events.Recorder{}
	f := &fixture{
		db:     db,
		events: rec,
		svc: New(db, Options{
			Cache:      c,
			Events:     rec,
			Logger:     zerolog.Nop(),
			Now:        func() time.Time { return testClock },
			PublicURL:  "https://sbfoods.test/",
			BcryptCost: bcrypt.MinCost,
		}),
	}

	f.customer = f.user(t, "Cathy Customer", "cathy@example.com", models.RoleCustomer)
	f.stranger = f.user(t, "Sam Stranger", "sam@example.com", models.RoleCustomer)
	f.owner = f.user(t, "Oscar Owner", "oscar@example.com", models.RoleRestaurant)
	f.otherOwner = f.user(t, "Rita Rival", "rita@example.com", models.RoleRestaurant)
	f.admin = f.user(t, "Ada Admin", "ada@example.com", models.RoleAdmin)

	f.restaurant = f.makeRestaurant(t, f.owner.UserID, "Burger Barn", models.RestaurantApproved)
	f.rival = f.makeRestaurant(t, f.otherOwner.UserID, "Sushi Spot", models.RestaurantApproved)

	f.burger = f.makeProduct(t, f.restaurant.ID, "Classic Burger", "100", "Burgers", []models.VariantGroup{{
		Name: "Size",
		Options: []models.VariantOption{
			{Name: "Regular", PriceModifier: decimal.Zero},
			{Name: "Large", PriceModifier: decimal.NewFromInt(30)},
		},
	}})
	f.fries = f.makeProduct(t, f.restaurant.ID, "Fries", "50", "Sides", nil)
	f.sushi = f.makeProduct(t, f.rival.ID, "Salmon Roll", "80", "Other", nil)
	return f
}

func (f *fixture) user(t *testing.T, name, email string, role models.UserRole) access.Actor {
	t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, f.db.Create(u).Error)
	return access.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) makeRestaurant(t *testing.T, ownerID uint, name string, status models.RestaurantStatus) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{
		OwnerID:     ownerID,
		Name:        name,
		Description: "Tasty food served fast",
		Cuisine:     "American",
		Status:      status,
		IsOpen:      true,
		DeliveryInfo: models.DeliveryInfo{
			DeliveryFee:    decimal.NewFromInt(40),
			MinimumOrder:   decimal.Zero,
			DeliveryRadius: 10,
		},
		TotalRevenue: decimal.Zero,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func (f *fixture) makeProduct(t *testing.T, restaurantID uint, name, price, category string, variants []models.VariantGroup) *models.Product {
	t.Helper()
	p := &models.Product{
		RestaurantID:    restaurantID,
		Name:            name,
		Price:           decimal.RequireFromString(price),
		Category:        category,
		Availability:    models.Availability{IsAvailable: true},
		Variants:        variants,
		PreparationTime: 15,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
