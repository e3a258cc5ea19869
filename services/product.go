package services

import (
	"context"
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

type ProductService struct {
	db    *gorm.DB
	cache cache.Cache
	log   zerolog.Logger
}

type ProductFilter struct {
	RestaurantID uint
	Category     string
	Dietary      []string
	Search       string
	Available    bool
	SortBy       string
	Order        string
	Page
}

var productSorts = map[string]string{
	"name":           "name",
	"price":          "price",
	"rating":         "rating_average",
	"rating.average": "rating_average",
	"createdAt":      "created_at",
	"orderCount":     "order_count",
}

// ProductInput carries the editable product fields. Nil pointers are left
// unchanged on update; RestaurantID is only read on create.
type ProductInput struct {
	RestaurantID    uint
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	Category        *string
	Images          []string
	Ingredients     []string
	Allergens       []string
	NutritionalInfo *models.NutritionalInfo
	Dietary         []string
	Availability    *models.Availability
	Variants        []models.VariantGroup
	PreparationTime *int
	IsPopular       *bool
	Tags            []string
}

// List returns products of approved restaurants.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, Pagination, error) {
	approved := s.db.Model(&models.Restaurant{}).Select("id").Where("status = ?", models.RestaurantApproved)
	q := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("restaurant_id IN (?)", approved).
		Where("is_available = ?", f.Available)
	if f.RestaurantID != 0 {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if len(f.Dietary) > 0 {
		// dietary is a JSON array column; match any of the quoted tags
		cond := s.db
		for i, d := range f.Dietary {
			pat := `%"` + strings.TrimSpace(d) + `"%`
			if i == 0 {
				cond = cond.Where("dietary LIKE ?", pat)
			} else {
				cond = cond.Or("dietary LIKE ?", pat)
			}
		}
		q = q.Where(cond)
	}
	if f.Search != "" {
		pat := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pat, pat)
	}

	column, ok := productSorts[f.SortBy]
	if !ok {
		column = "name"
	}
	desc := f.Order == "desc"

	products := []models.Product{}
	page, err := paginate(q, f.Page, 20, &products, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Restaurant").
			Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
			Order("id")
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return products, page, nil
}

func (s *ProductService) Get(ctx context.Context, actor access.Actor, id uint) (*models.Product, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.ProductOf(p), access.Read); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) load(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Preload("Restaurant").First(&p, id).Error; err != nil {
		return nil, lookup(err, "Product not found")
	}
	return &p, nil
}

// Create adds a product to a restaurant the caller owns.
func (s *ProductService) Create(ctx context.Context, actor access.Actor, in ProductInput) (*models.Product, error) {
	if in.RestaurantID == 0 {
		return nil, apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "restaurant", Message: "Restaurant is required"})
	}
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, in.RestaurantID).Error; err != nil {
		return nil, lookup(err, "Restaurant not found")
	}
	if err := access.CanAccess(actor, access.RestaurantOf(&r), access.Mutate); err != nil {
		return nil, err
	}
	if in.Name == nil || in.Price == nil {
		return nil, apperr.Validation("Validation failed").WithFields(
			apperr.FieldError{Field: "name", Message: "Product name is required"},
			apperr.FieldError{Field: "price", Message: "Price is required"},
		)
	}

	p := &models.Product{
		RestaurantID:    r.ID,
		PreparationTime: 15,
		Availability:    models.Availability{IsAvailable: true},
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, err
	}
	p.Restaurant = &r
	invalidate(ctx, s.cache, s.log, cache.MenuKey(r.ID))
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actor access.Actor, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.ProductOf(p), access.Mutate); err != nil {
		return nil, err
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, cache.MenuKey(p.RestaurantID))
	return p, nil
}

// Delete removes a product. Past orders keep their own snapshot of it.
func (s *ProductService) Delete(ctx context.Context, actor access.Actor, id uint) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanAccess(actor, access.ProductOf(p), access.Mutate); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Product{}, p.ID).Error; err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, cache.MenuKey(p.RestaurantID))
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) error {
	invalid := func(field, msg string) error {
		return apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: field, Message: msg})
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("name", "Product name is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return invalid("price", "Price must be a positive number")
		}
		p.Price = *in.Price
	}
	if in.Category != nil {
		if !validCategory(*in.Category) {
			return invalid("category", "Invalid category")
		}
		p.Category = *in.Category
	}
	if in.Variants != nil {
		for _, g := range in.Variants {
			if strings.TrimSpace(g.Name) == "" {
				return invalid("variants", "Variant name is required")
			}
			for _, o := range g.Options {
				if o.PriceModifier.IsNegative() {
					return invalid("variants", "Price modifiers cannot be negative")
				}
			}
		}
		p.Variants = in.Variants
	}
	if in.Availability != nil {
		p.Availability = *in.Availability
	}
	if in.NutritionalInfo != nil {
		p.NutritionalInfo = *in.NutritionalInfo
	}
	if in.PreparationTime != nil {
		if *in.PreparationTime < 0 {
			return invalid("preparationTime", "Preparation time cannot be negative")
		}
		p.PreparationTime = *in.PreparationTime
	}
	if in.IsPopular != nil {
		p.IsPopular = *in.IsPopular
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Ingredients != nil {
		p.Ingredients = in.Ingredients
	}
	if in.Allergens != nil {
		p.Allergens = in.Allergens
	}
	if in.Dietary != nil {
		p.Dietary = in.Dietary
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	return nil
}

func validCategory(c string) bool {
	for _, v := range models.Categories {
		if v == c {
			return true
		}
	}
	return false
}
