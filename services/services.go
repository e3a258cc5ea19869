// Package services holds the business operations behind the HTTP handlers.
// Every operation takes the caller as an access.Actor and returns apperr
// errors that the handlers map to status codes.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/events"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options are the collaborators shared by all services.
type Options struct {
	Cache     cache.Cache
	Events    events.Publisher
	Logger    zerolog.Logger
	Now       func() time.Time
	PublicURL string
	// BcryptCost overrides the password hashing cost; zero means bcrypt.DefaultCost.
	BcryptCost int
}

func (o *Options) defaults() {
	if o.Cache == nil {
		o.Cache = cache.Noop{}
	}
	if o.Events == nil {
		o.Events = events.Nop{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Services bundles every service over one database handle.
type Services struct {
	Auth        *AuthService
	Restaurants *RestaurantService
	Products    *ProductService
	Carts       *CartService
	Orders      *OrderService
	Admin       *AdminService
}

func New(db *gorm.DB, opts Options) *Services {
	opts.defaults()
	carts := &CartService{db: db, now: opts.Now}
	orders := &OrderService{
		db:        db,
		carts:     carts,
		cache:     opts.Cache,
		events:    opts.Events,
		log:       opts.Logger,
		now:       opts.Now,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		qr:        EncodeQR,
	}
	return &Services{
		Auth:        &AuthService{db: db, cost: opts.BcryptCost},
		Restaurants: &RestaurantService{db: db, cache: opts.Cache, log: opts.Logger},
		Products:    &ProductService{db: db, cache: opts.Cache, log: opts.Logger},
		Carts:       carts,
		Orders:      orders,
		Admin:       &AdminService{db: db, orders: orders, cache: opts.Cache, log: opts.Logger, now: opts.Now},
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

// lookup converts a missing row into a NotFound error with the given message.
func lookup(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFound)
	}
	return err
}

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func invalidate(ctx context.Context, c cache.Cache, log zerolog.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
