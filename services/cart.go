package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService struct {
	db  *gorm.DB
	now func() time.Time
}

// VariantChoice is a client's pick of one option in a product variant group.
type VariantChoice struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

type AddItemInput struct {
	ProductID           uint
	Quantity            int
	Variants            []VariantChoice
	SpecialInstructions string
}

// CartLine is a cart item joined with the live product.
type CartLine struct {
	models.CartItem
	Product   *models.Product `json:"product"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartView is what clients see: live product data and a price breakdown.
type CartView struct {
	ID           uint               `json:"id,omitempty"`
	UserID       uint               `json:"userId"`
	RestaurantID *uint              `json:"restaurantId"`
	Restaurant   *models.Restaurant `json:"restaurant,omitempty"`
	Items        []CartLine         `json:"items"`
	ItemCount    int                `json:"itemCount"`
	Pricing      models.Pricing     `json:"pricing"`
	Version      int                `json:"version"`
}

// Get returns the caller's cart, or an empty one if none was ever created.
// Items whose product no longer exists are left out of the view.
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return s.view(ctx, &models.Cart{UserID: userID})
	}
	return s.view(ctx, cart)
}

// AddItem puts a product in the cart. A product from another restaurant
// empties the cart first; adding a product already present sums quantities.
func (s *CartService) AddItem(ctx context.Context, userID uint, in AddItemInput) (*CartView, error) {
	if in.Quantity < 1 {
		return nil, apperr.New(apperr.ErrInvalidArgument, "Quantity must be at least 1")
	}
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Restaurant").First(&product, in.ProductID).Error; err != nil {
		return nil, lookup(err, "Product not found")
	}
	if product.Restaurant == nil || !product.Restaurant.IsApproved() {
		return nil, apperr.Unavailable("Restaurant is not accepting orders")
	}
	if !product.Availability.At(s.now()) {
		return nil, apperr.Unavailable("Product is currently unavailable")
	}
	variants, err := resolveVariants(&product, in.Variants)
	if err != nil {
		return nil, err
	}

	cart, err := s.find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	if cart.RestaurantID != nil && *cart.RestaurantID != product.RestaurantID {
		cart.Items = []models.CartItem{}
	}
	rid := product.RestaurantID
	cart.RestaurantID = &rid

	merged := false
	for i := range cart.Items {
		it := &cart.Items[i]
		if it.ProductID != product.ID {
			continue
		}
		it.Quantity += in.Quantity
		if len(variants) > 0 {
			it.Variants = variants
		}
		if in.SpecialInstructions != "" {
			it.SpecialInstructions = in.SpecialInstructions
		}
		merged = true
		break
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ID:                  uuid.NewString(),
			ProductID:           product.ID,
			Quantity:            in.Quantity,
			Variants:            variants,
			SpecialInstructions: in.SpecialInstructions,
			AddedAt:             s.now(),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// UpdateQuantity sets an item's quantity; zero removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, itemID string, quantity int) (*CartView, error) {
	if quantity < 0 {
		return nil, apperr.New(apperr.ErrInvalidArgument, "Quantity cannot be negative")
	}
	cart, err := s.find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.NotFound("Cart not found")
	}
	idx := cart.ItemIndex(itemID)
	if idx < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	if quantity == 0 {
		removeAt(cart, idx)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// RemoveItem deletes an item. Removing something that is not there is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID uint, itemID string) (*CartView, error) {
	cart, err := s.find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return s.view(ctx, &models.Cart{UserID: userID})
	}
	idx := cart.ItemIndex(itemID)
	if idx < 0 {
		return s.view(ctx, cart)
	}
	removeAt(cart, idx)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// Clear empties the cart. Clearing an empty or missing cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID uint) (*CartView, error) {
	cart, err := s.find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return s.view(ctx, &models.Cart{UserID: userID})
	}
	if len(cart.Items) > 0 || cart.RestaurantID != nil {
		cart.Items = []models.CartItem{}
		cart.RestaurantID = nil
		if err := s.save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, cart)
}

// clearTx empties the cart inside an open transaction.
func (s *CartService) clearTx(ctx context.Context, tx *gorm.DB, userID uint) error {
	cart, err := s.find(ctx, tx, userID)
	if err != nil || cart == nil {
		return err
	}
	cart.Items = []models.CartItem{}
	cart.RestaurantID = nil
	return saveCart(tx.WithContext(ctx), cart)
}

func (s *CartService) find(ctx context.Context, db *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	db := s.db.WithContext(ctx)
	if cart.ID == 0 {
		if err := db.Create(cart).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("Cart was modified concurrently, please retry")
			}
			return err
		}
		return nil
	}
	return saveCart(db, cart)
}

// saveCart writes the cart only if nobody else wrote it since it was read.
func saveCart(db *gorm.DB, cart *models.Cart) error {
	old := cart.Version
	cart.Version++
	res := db.Model(cart).Where("version = ?", old).
		Select("restaurant_id", "items", "version", "updated_at").
		Updates(cart)
	if res.Error != nil {
		cart.Version = old
		return res.Error
	}
	if res.RowsAffected == 0 {
		cart.Version = old
		return apperr.Conflict("Cart was modified concurrently, please retry")
	}
	return nil
}

func removeAt(cart *models.Cart, idx int) {
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if len(cart.Items) == 0 {
		cart.RestaurantID = nil
	}
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	v := &CartView{
		ID:           cart.ID,
		UserID:       cart.UserID,
		RestaurantID: cart.RestaurantID,
		Items:        []CartLine{},
		Version:      cart.Version,
	}

	fee := decimal.Zero
	if cart.RestaurantID != nil && len(cart.Items) > 0 {
		var r models.Restaurant
		err := s.db.WithContext(ctx).First(&r, *cart.RestaurantID).Error
		switch {
		case err == nil:
			v.Restaurant = &r
			fee = r.DeliveryInfo.DeliveryFee
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	products := map[uint]*models.Product{}
	if len(cart.Items) > 0 {
		ids := make([]uint, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		var found []models.Product
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
			return nil, err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}

	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		line := pricing.LineFor(p.Price, it.Quantity, it.Variants)
		lines = append(lines, line)
		v.Items = append(v.Items, CartLine{
			CartItem:  it,
			Product:   p,
			UnitPrice: line.UnitTotal(),
			LineTotal: line.Total(),
		})
		v.ItemCount += it.Quantity
	}
	if len(lines) == 0 {
		fee = decimal.Zero
	}
	breakdown, err := pricing.Calculate(lines, fee)
	if err != nil {
		return nil, err
	}
	v.Pricing = breakdown
	return v, nil
}

// resolveVariants looks the chosen options up on the product so the price
// modifier always comes from the menu.
func resolveVariants(p *models.Product, choices []VariantChoice) ([]models.SelectedVariant, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	out := make([]models.SelectedVariant, 0, len(choices))
	seen := map[string]bool{}
	for _, c := range choices {
		key := strings.ToLower(c.Name)
		if seen[key] {
			return nil, apperr.Validation("Variant %s chosen more than once", c.Name)
		}
		seen[key] = true
		opt, ok := p.FindOption(c.Name, c.Option)
		if !ok {
			return nil, apperr.Validation("Unknown option %q for variant %q of %s", c.Option, c.Name, p.Name)
		}
		out = append(out, models.SelectedVariant{Name: c.Name, Option: opt.Name, PriceModifier: opt.PriceModifier})
	}
	return out, nil
}
