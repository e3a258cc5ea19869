package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Shashank-1177/SBFood/access"
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RestaurantService struct {
	db    *gorm.DB
	cache cache.Cache
	log   zerolog.Logger
}

type RestaurantFilter struct {
	Cuisine  string
	Search   string
	SortBy   string
	Order    string
	Featured *bool
	IsOpen   *bool
	Page
}

var restaurantSorts = map[string]string{
	"rating":                   "rating_average",
	"rating.average":           "rating_average",
	"name":                     "name",
	"createdAt":                "created_at",
	"deliveryFee":              "delivery_fee",
	"deliveryInfo.deliveryFee": "delivery_fee",
	"totalOrders":              "total_orders",
}

// RestaurantInput carries the owner-editable fields. Nil pointers are left
// unchanged on update.
type RestaurantInput struct {
	Name           *string
	Description    *string
	Cuisine        *string
	Contact        *models.Contact
	Address        *models.Address
	Images         *models.Images
	OperatingHours models.OperatingHours
	DeliveryInfo   *models.DeliveryInfo
	IsOpen         *bool
	Featured       *bool
	Tags           []string
}

func ownerOnly(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

// List returns approved restaurants.
func (s *RestaurantService) List(ctx context.Context, f RestaurantFilter) ([]models.Restaurant, Pagination, error) {
	q := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("status = ?", models.RestaurantApproved)
	if f.Cuisine != "" {
		q = q.Where("cuisine = ?", f.Cuisine)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.IsOpen != nil {
		q = q.Where("is_open = ?", *f.IsOpen)
	}
	if f.Search != "" {
		pat := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(cuisine) LIKE ?", pat, pat, pat)
	}

	column, ok := restaurantSorts[f.SortBy]
	if !ok {
		column = "rating_average"
	}
	desc := f.Order != "asc"

	restaurants := []models.Restaurant{}
	page, err := paginate(q, f.Page, 10, &restaurants, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Owner", ownerOnly).
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order("id")
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return restaurants, page, nil
}

// Get returns one restaurant. Approved restaurants are served from the cache.
func (s *RestaurantService) Get(ctx context.Context, actor access.Actor, id uint) (*models.Restaurant, error) {
	var cached models.Restaurant
	err := s.cache.Get(ctx, cache.RestaurantKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Uint("restaurant_id", id).Msg("cache read failed")
	}

	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.RestaurantOf(r), access.Read); err != nil {
		return nil, err
	}
	if r.IsApproved() {
		if err := s.cache.Set(ctx, cache.RestaurantKey(id), r); err != nil {
			s.log.Warn().Err(err).Uint("restaurant_id", id).Msg("cache write failed")
		}
	}
	return r, nil
}

// Mine returns the caller's own restaurant in whatever status it is.
func (s *RestaurantService) Mine(ctx context.Context, actor access.Actor) (*models.Restaurant, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	var r models.Restaurant
	err := s.db.WithContext(ctx).Preload("Owner", ownerOnly).Where("owner_id = ?", actor.UserID).First(&r).Error
	if err != nil {
		return nil, lookup(err, "No restaurant found for your account")
	}
	return &r, nil
}

func (s *RestaurantService) load(ctx context.Context, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).Preload("Owner", ownerOnly).First(&r, id).Error; err != nil {
		return nil, lookup(err, "Restaurant not found")
	}
	return &r, nil
}

type MenuFilter struct {
	Category  string
	Available bool
}

// Menu lists a restaurant's products sorted by category then name.
func (s *RestaurantService) Menu(ctx context.Context, actor access.Actor, id uint, f MenuFilter) ([]models.Product, error) {
	cacheable := f.Category == "" && f.Available
	if cacheable {
		var cached []models.Product
		if err := s.cache.Get(ctx, cache.MenuKey(id), &cached); err == nil {
			return cached, nil
		}
	}

	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, lookup(err, "Restaurant not found")
	}
	if err := access.CanAccess(actor, access.RestaurantOf(&r), access.Read); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("restaurant_id = ? AND is_available = ?", id, f.Available)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	products := []models.Product{}
	if err := q.Order("category").Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	if cacheable && r.IsApproved() {
		if err := s.cache.Set(ctx, cache.MenuKey(id), products); err != nil {
			s.log.Warn().Err(err).Uint("restaurant_id", id).Msg("cache write failed")
		}
	}
	return products, nil
}

// Create registers a restaurant for the caller in pending status.
func (s *RestaurantService) Create(ctx context.Context, actor access.Actor, in RestaurantInput) (*models.Restaurant, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if actor.Role != models.RoleRestaurant && !actor.IsAdmin() {
		return nil, apperr.Forbidden("Only restaurant owners can create restaurants")
	}
	if in.Name == nil || len(strings.TrimSpace(*in.Name)) < 2 {
		return nil, apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "name", Message: "Restaurant name is required"})
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", actor.UserID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperr.Conflict("You already have a restaurant")
	}

	r := &models.Restaurant{
		OwnerID: actor.UserID,
		Status:  models.RestaurantPending,
		IsOpen:  true,
		DeliveryInfo: models.DeliveryInfo{
			DeliveryFee:           decimal.Zero,
			MinimumOrder:          decimal.Zero,
			EstimatedDeliveryTime: "30-45 mins",
			DeliveryRadius:        10,
		},
		TotalRevenue: decimal.Zero,
	}
	if err := applyRestaurantInput(r, in, actor.IsAdmin()); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes owner-editable fields. Status, owner and counters are never
// touched here; featured is admin only.
func (s *RestaurantService) Update(ctx context.Context, actor access.Actor, id uint, in RestaurantInput) (*models.Restaurant, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.RestaurantOf(r), access.Mutate); err != nil {
		return nil, err
	}
	if err := applyRestaurantInput(r, in, actor.IsAdmin()); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(r).
		Omit(clause.Associations).
		Select(editableRestaurantColumns).
		Updates(r).Error
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, cache.RestaurantKey(id), cache.MenuKey(id))
	return r, nil
}

// Counters, rating and status belong to orders and admins.
var editableRestaurantColumns = []string{
	"name", "description", "cuisine", "contact", "address", "images", "operating_hours",
	"delivery_fee", "minimum_order", "estimated_delivery_time", "delivery_radius",
	"is_open", "featured", "tags", "updated_at",
}

func applyRestaurantInput(r *models.Restaurant, in RestaurantInput, admin bool) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 2 {
			return apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "name", Message: "Restaurant name is required"})
		}
		r.Name = name
	}
	if in.Description != nil {
		r.Description = strings.TrimSpace(*in.Description)
	}
	if in.Cuisine != nil {
		if !validCuisine(*in.Cuisine) {
			return apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "cuisine", Message: "Invalid cuisine type"})
		}
		r.Cuisine = *in.Cuisine
	}
	if in.Contact != nil {
		r.Contact = *in.Contact
	}
	if in.Address != nil {
		r.Address = *in.Address
	}
	if in.Images != nil {
		r.Images = *in.Images
	}
	if in.OperatingHours != nil {
		r.OperatingHours = in.OperatingHours
	}
	if in.DeliveryInfo != nil {
		d := *in.DeliveryInfo
		if d.DeliveryFee.IsNegative() || d.MinimumOrder.IsNegative() {
			return apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "deliveryInfo", Message: "Fees cannot be negative"})
		}
		if d.DeliveryRadius <= 0 {
			d.DeliveryRadius = r.DeliveryInfo.DeliveryRadius
		}
		r.DeliveryInfo = d
	}
	if in.IsOpen != nil {
		r.IsOpen = *in.IsOpen
	}
	if in.Featured != nil && admin {
		r.Featured = *in.Featured
	}
	if in.Tags != nil {
		r.Tags = in.Tags
	}
	return nil
}

func validCuisine(c string) bool {
	for _, v := range models.Cuisines {
		if v == c {
			return true
		}
	}
	return false
}
