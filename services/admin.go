package services

import (
	"context"
	"time"

	"github.com/Shashank-1177/SBFood/access"
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AdminService struct {
	db     *gorm.DB
	orders *OrderService
	cache  cache.Cache
	log    zerolog.Logger
	now    func() time.Time
}

type Stats struct {
	Customers    int64           `json:"customers"`
	Restaurants  int64           `json:"restaurants"`
	Pending      int64           `json:"pendingRestaurants"`
	Orders       int64           `json:"orders"`
	Products     int64           `json:"products"`
	MonthRevenue decimal.Decimal `json:"monthRevenue"`
}

type Dashboard struct {
	Stats        Stats          `json:"stats"`
	RecentOrders []models.Order `json:"recentOrders"`
}

type UserFilter struct {
	Role   models.UserRole
	Search string
	Page
}

type RestaurantAdminFilter struct {
	Status models.RestaurantStatus
	Search string
	Page
}

// Stats reports global counts, the ten most recent orders and the revenue
// of completed payments since the start of the month.
func (s *AdminService) Stats(ctx context.Context, actor access.Actor) (*Dashboard, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Read); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var st Stats
	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&st.Customers, &models.User{}, []any{"role = ?", models.RoleCustomer}},
		{&st.Restaurants, &models.Restaurant{}, []any{"status = ?", models.RestaurantApproved}},
		{&st.Pending, &models.Restaurant{}, []any{"status = ?", models.RestaurantPending}},
		{&st.Orders, &models.Order{}, nil},
		{&st.Products, &models.Product{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var revenue decimal.NullDecimal
	err := db.Model(&models.Order{}).
		Where("created_at >= ? AND payment_status = ?", monthStart, models.PaymentCompleted).
		Select("SUM(total)").Row().Scan(&revenue)
	if err != nil {
		return nil, err
	}
	st.MonthRevenue = decimal.Zero
	if revenue.Valid {
		st.MonthRevenue = pricing.Round(revenue.Decimal)
	}

	recent := []models.Order{}
	err = db.Preload("Restaurant").Preload("Customer", ownerOnly).
		Order("created_at DESC").Order("id DESC").Limit(10).Find(&recent).Error
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: st, RecentOrders: recent}, nil
}

func (s *AdminService) Users(ctx context.Context, actor access.Actor, f UserFilter) ([]models.User, Pagination, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Read); err != nil {
		return nil, Pagination{}, err
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		pat := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pat, pat)
	}
	users := []models.User{}
	page, err := paginate(q, f.Page, 10, &users, newestFirst)
	return users, page, err
}

// Restaurants lists restaurants in every status.
func (s *AdminService) Restaurants(ctx context.Context, actor access.Actor, f RestaurantAdminFilter) ([]models.Restaurant, Pagination, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Read); err != nil {
		return nil, Pagination{}, err
	}
	q := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, Pagination{}, apperr.Validation("Invalid status")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		pat := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(cuisine) LIKE ?", pat, pat)
	}
	restaurants := []models.Restaurant{}
	page, err := paginate(q, f.Page, 10, &restaurants, func(db *gorm.DB) *gorm.DB {
		return newestFirst(db.Preload("Owner", ownerOnly))
	})
	return restaurants, page, err
}

// SetRestaurantStatus approves, rejects or suspends a restaurant.
func (s *AdminService) SetRestaurantStatus(ctx context.Context, actor access.Actor, id uint, status models.RestaurantStatus) (*models.Restaurant, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Mutate); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status")
	}
	var r models.Restaurant
	db := s.db.WithContext(ctx)
	if err := db.First(&r, id).Error; err != nil {
		return nil, lookup(err, "Restaurant not found")
	}
	if err := db.Model(&r).Update("status", status).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Owner", ownerOnly).First(&r, id).Error; err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, cache.RestaurantKey(id), cache.MenuKey(id))
	s.log.Info().Uint("restaurant_id", id).Str("status", string(status)).Uint("admin_id", actor.UserID).Msg("restaurant status changed")
	return &r, nil
}

// Orders lists every order, optionally filtered by status or order number.
func (s *AdminService) Orders(ctx context.Context, actor access.Actor, f OrderFilter) ([]models.Order, Pagination, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Read); err != nil {
		return nil, Pagination{}, err
	}
	return s.orders.List(ctx, actor, f)
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
