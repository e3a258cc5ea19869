// Package seed fills a database with demo restaurants, menus and customers.
// Everything goes through the services so the data obeys the same rules as
// API input.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Shashank-1177/SBFood/access"
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
)

type Options struct {
	Restaurants int
	Products    int // per restaurant
	Customers   int
	Password    string
	// Tag keeps generated emails unique across runs.
	Tag  string
	Seed int64
}

// Steps is the number of progress ticks a run reports.
func (o Options) Steps() int {
	return 1 + o.Restaurants*(1+o.Products) + o.Customers
}

type Result struct {
	AdminEmail  string
	Restaurants int
	Products    int
	Customers   int
}

// Progress is told about every created record. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

type noProgress struct{}

func (noProgress) Add(int) error { return nil }

type seeder struct {
	svc  *services.Services
	opts Options
	fake faker.Faker
	rnd  *rand.Rand
	tick Progress
}

func Run(ctx context.Context, svc *services.Services, opts Options, progress Progress) (Result, error) {
	if opts.Password == "" {
		opts.Password = "password123"
	}
	if progress == nil {
		progress = noProgress{}
	}
	src := rand.NewSource(opts.Seed)
	s := &seeder{
		svc:  svc,
		opts: opts,
		fake: faker.NewWithSeed(src),
		rnd:  rand.New(src),
		tick: progress,
	}

	var res Result
	admin, err := s.admin(ctx)
	if err != nil {
		return res, fmt.Errorf("seeding admin: %w", err)
	}
	res.AdminEmail = admin.Email
	s.step()

	adminActor := access.Actor{UserID: admin.ID, Role: models.RoleAdmin}
	for i := 0; i < opts.Restaurants; i++ {
		r, err := s.restaurant(ctx, adminActor, i)
		if err != nil {
			return res, fmt.Errorf("seeding restaurant %d: %w", i, err)
		}
		res.Restaurants++
		s.step()

		owner := access.Actor{UserID: r.OwnerID, Role: models.RoleRestaurant}
		for j := 0; j < opts.Products; j++ {
			if _, err := s.product(ctx, owner, r.ID); err != nil {
				return res, fmt.Errorf("seeding product %d of restaurant %d: %w", j, r.ID, err)
			}
			res.Products++
			s.step()
		}
	}

	for i := 0; i < opts.Customers; i++ {
		if _, err := s.user(ctx, models.RoleCustomer, i); err != nil {
			return res, fmt.Errorf("seeding customer %d: %w", i, err)
		}
		res.Customers++
		s.step()
	}
	return res, nil
}

func (s *seeder) step() {
	_ = s.tick.Add(1)
}

func (s *seeder) email(kind string, i int) string {
	if s.opts.Tag == "" {
		return fmt.Sprintf("%s%d@sbfoods.test", kind, i)
	}
	return fmt.Sprintf("%s%d.%s@sbfoods.test", kind, i, s.opts.Tag)
}

// admin creates the seed administrator, or signs in as it on a re-run.
func (s *seeder) admin(ctx context.Context) (*models.User, error) {
	in := services.RegisterInput{
		Name:     "SB Foods Admin",
		Email:    s.email("admin", 0),
		Password: s.opts.Password,
	}
	u, err := s.svc.Auth.CreateAdmin(ctx, in)
	if errors.Is(err, apperr.ErrConflict) {
		return s.svc.Auth.Login(ctx, in.Email, in.Password)
	}
	return u, err
}

func (s *seeder) user(ctx context.Context, role models.UserRole, i int) (*models.User, error) {
	return s.svc.Auth.Register(ctx, services.RegisterInput{
		Name:     s.fake.Person().Name(),
		Email:    s.email(string(role), i),
		Password: s.opts.Password,
		Role:     role,
		Phone:    s.fake.Phone().Number(),
	})
}

func (s *seeder) restaurant(ctx context.Context, admin access.Actor, i int) (*models.Restaurant, error) {
	owner, err := s.user(ctx, models.RoleRestaurant, i)
	if err != nil {
		return nil, err
	}
	actor := access.Actor{UserID: owner.ID, Role: models.RoleRestaurant}

	name := s.fake.Company().Name()
	description := s.fake.Lorem().Sentence(12)
	cuisine := models.Cuisines[s.rnd.Intn(len(models.Cuisines))]
	r, err := s.svc.Restaurants.Create(ctx, actor, services.RestaurantInput{
		Name:        &name,
		Description: &description,
		Cuisine:     &cuisine,
		Contact:     &models.Contact{Phone: owner.Phone, Email: owner.Email},
		Address: &models.Address{
			Street:  s.fake.Address().StreetAddress(),
			City:    s.fake.Address().City(),
			State:   s.fake.Address().State(),
			ZipCode: s.fake.Address().PostCode(),
		},
		OperatingHours: everyDay("09:00", "23:00"),
		DeliveryInfo: &models.DeliveryInfo{
			DeliveryFee:           decimal.NewFromInt(int64(s.fake.IntBetween(0, 6) * 10)),
			MinimumOrder:          decimal.NewFromInt(int64(s.fake.IntBetween(0, 3) * 100)),
			EstimatedDeliveryTime: "30-45 mins",
			DeliveryRadius:        10,
		},
		Tags: []string{strings.ToLower(cuisine)},
	})
	if err != nil {
		return nil, err
	}
	return s.svc.Admin.SetRestaurantStatus(ctx, admin, r.ID, models.RestaurantApproved)
}

var sizes = models.VariantGroup{
	Name: "Size",
	Options: []models.VariantOption{
		{Name: "Regular", PriceModifier: decimal.Zero},
		{Name: "Large", PriceModifier: decimal.NewFromInt(40)},
	},
}

func (s *seeder) product(ctx context.Context, owner access.Actor, restaurantID uint) (*models.Product, error) {
	category := models.Categories[s.rnd.Intn(len(models.Categories))]
	name := fmt.Sprintf("%s %s", capitalize(s.fake.Food().Vegetable()), category)
	description := s.fake.Lorem().Sentence(8)
	price := decimal.NewFromInt(int64(s.fake.IntBetween(5, 50) * 10))
	prep := s.fake.IntBetween(5, 40)
	in := services.ProductInput{
		RestaurantID:    restaurantID,
		Name:            &name,
		Description:     &description,
		Price:           &price,
		Category:        &category,
		PreparationTime: &prep,
	}
	if s.rnd.Intn(2) == 0 {
		in.Variants = []models.VariantGroup{sizes}
	}
	if s.rnd.Intn(3) == 0 {
		in.Dietary = []string{"vegetarian"}
	}
	return s.svc.Products.Create(ctx, owner, in)
}

func everyDay(open, close string) models.OperatingHours {
	hours := models.OperatingHours{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		hours[d] = models.DayHours{Open: open, Close: close}
	}
	return hours
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
