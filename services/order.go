package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Shashank-1177/SBFood/access"
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/events"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/pricing"
	"github.com/Shashank-1177/SBFood/statemachine"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryWindow is added to the placement time for the delivery estimate.
const DeliveryWindow = 30 * time.Minute

const orderNumberAttempts = 5

// QRGenerator renders content as a PNG QR code.
type QRGenerator func(content string) ([]byte, error)

func EncodeQR(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 256)
}

type OrderService struct {
	db        *gorm.DB
	carts     *CartService
	cache     cache.Cache
	events    events.Publisher
	log       zerolog.Logger
	now       func() time.Time
	publicURL string
	qr        QRGenerator
}

type OrderLineInput struct {
	ProductID           uint
	Quantity            int
	Variants            []VariantChoice
	SpecialInstructions string
}

// CreateOrderInput describes a checkout. With no Items the caller's cart is used.
type CreateOrderInput struct {
	RestaurantID        uint
	Items               []OrderLineInput
	DeliveryAddress     models.DeliveryAddress
	Contact             models.Contact
	PaymentMethod       models.PaymentMethod
	SpecialInstructions string
}

type OrderFilter struct {
	Status models.OrderStatus
	Search string
	Page
}

type RatingInput struct {
	Food     int
	Delivery int
	Overall  int
	Comment  string
}

// Create places an order. The order insert, the cart clear and the
// restaurant and product counters are written in one transaction.
func (s *OrderService) Create(ctx context.Context, actor access.Actor, in CreateOrderInput) (*models.Order, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if actor.Role != models.RoleCustomer {
		return nil, apperr.Forbidden("Only customers can place orders")
	}
	switch in.PaymentMethod {
	case models.PaymentCard, models.PaymentCash, models.PaymentDigitalWallet:
	default:
		return nil, apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "paymentMethod", Message: "Invalid payment method"})
	}

	if len(in.Items) == 0 {
		if err := s.fillFromCart(ctx, actor.UserID, &in); err != nil {
			return nil, err
		}
	}
	if in.RestaurantID == 0 {
		return nil, apperr.Validation("Validation failed").WithFields(apperr.FieldError{Field: "restaurant", Message: "Restaurant is required"})
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, in.RestaurantID).Error; err != nil {
		return nil, lookup(err, "Restaurant not found")
	}
	if !restaurant.IsApproved() || !restaurant.IsOpen {
		return nil, apperr.Unavailable("Restaurant is not accepting orders")
	}

	items, lines, err := s.buildItems(ctx, &restaurant, in.Items)
	if err != nil {
		return nil, err
	}
	breakdown, err := pricing.Calculate(lines, restaurant.DeliveryInfo.DeliveryFee)
	if err != nil {
		return nil, err
	}
	if breakdown.Subtotal.LessThan(restaurant.DeliveryInfo.MinimumOrder) {
		return nil, apperr.Validation("Minimum order amount is %s", restaurant.DeliveryInfo.MinimumOrder.StringFixed(2))
	}

	now := s.now()
	number, err := s.newOrderNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	payment := models.Payment{Method: in.PaymentMethod, Status: models.PaymentPending}
	if in.PaymentMethod != models.PaymentCash {
		paidAt := now
		payment.Status = models.PaymentCompleted
		payment.TransactionID = "txn_" + uuid.NewString()
		payment.PaidAt = &paidAt
	}

	order := &models.Order{
		OrderNumber:     number,
		CustomerID:      actor.UserID,
		RestaurantID:    restaurant.ID,
		Items:           items,
		Pricing:         breakdown,
		Total:           breakdown.Total,
		DeliveryAddress: in.DeliveryAddress,
		Contact:         in.Contact,
		Payment:         payment,
		PaymentStatus:   payment.Status,
		Status:          models.StatusPlaced,
		Timeline: []models.TimelineEntry{
			{Status: models.StatusPlaced, Timestamp: now, Note: "Order placed successfully"},
		},
		EstimatedDeliveryTime: now.Add(DeliveryWindow),
		SpecialInstructions:   in.SpecialInstructions,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("Order number collision, please retry")
			}
			return err
		}
		if err := s.carts.clearTx(ctx, tx, actor.UserID); err != nil {
			return err
		}
		err := tx.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).Updates(map[string]any{
			"total_orders":  gorm.Expr("total_orders + ?", 1),
			"total_revenue": gorm.Expr("total_revenue + ?", breakdown.Total),
		}).Error
		if err != nil {
			return err
		}
		for productID, qty := range quantities(items) {
			err := tx.Model(&models.Product{}).Where("id = ?", productID).
				UpdateColumn("order_count", gorm.Expr("order_count + ?", qty)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.log, cache.RestaurantKey(restaurant.ID), cache.MenuKey(restaurant.ID))
	order.Restaurant = &restaurant
	s.publish(ctx, events.FromOrder(events.OrderPlaced, order, now))
	return order, nil
}

func (s *OrderService) fillFromCart(ctx context.Context, userID uint, in *CreateOrderInput) error {
	cart, err := s.carts.find(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if cart == nil || len(cart.Items) == 0 {
		return apperr.Validation("Cart is empty")
	}
	if in.RestaurantID == 0 && cart.RestaurantID != nil {
		in.RestaurantID = *cart.RestaurantID
	}
	if cart.RestaurantID != nil && in.RestaurantID != *cart.RestaurantID {
		return apperr.Validation("Cart items belong to a different restaurant")
	}
	for _, it := range cart.Items {
		line := OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity, SpecialInstructions: it.SpecialInstructions}
		for _, v := range it.Variants {
			line.Variants = append(line.Variants, VariantChoice{Name: v.Name, Option: v.Option})
		}
		in.Items = append(in.Items, line)
	}
	return nil
}

// buildItems snapshots each product at its current price.
func (s *OrderService) buildItems(ctx context.Context, r *models.Restaurant, in []OrderLineInput) ([]models.OrderItem, []pricing.Line, error) {
	ids := make([]uint, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.ProductID)
	}
	var found []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, nil, err
	}
	products := make(map[uint]*models.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	now := s.now()
	items := make([]models.OrderItem, 0, len(in))
	lines := make([]pricing.Line, 0, len(in))
	for _, l := range in {
		if l.Quantity < 1 {
			return nil, nil, apperr.Validation("Quantity must be at least 1")
		}
		p, ok := products[l.ProductID]
		if !ok {
			return nil, nil, apperr.NotFound("Product %d not found", l.ProductID)
		}
		if p.RestaurantID != r.ID {
			return nil, nil, apperr.Validation("%s does not belong to this restaurant", p.Name)
		}
		if !p.Availability.At(now) {
			return nil, nil, apperr.Unavailable("%s is currently unavailable", p.Name)
		}
		variants, err := resolveVariants(p, l.Variants)
		if err != nil {
			return nil, nil, err
		}
		line := pricing.LineFor(p.Price, l.Quantity, variants)
		lines = append(lines, line)
		items = append(items, models.OrderItem{
			ProductID:           p.ID,
			Name:                p.Name,
			Price:               line.UnitTotal(),
			Quantity:            l.Quantity,
			Variants:            variants,
			SpecialInstructions: l.SpecialInstructions,
		})
	}
	return items, lines, nil
}

func quantities(items []models.OrderItem) map[uint]int {
	m := make(map[uint]int, len(items))
	for _, it := range items {
		m[it.ProductID] += it.Quantity
	}
	return m
}

// newOrderNumber returns ORD-<last 6 digits of unix ms>-<3 random digits>,
// retrying while the number is taken.
func (s *OrderService) newOrderNumber(ctx context.Context, now time.Time) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := fmt.Sprintf("ORD-%06d-%03d", now.UnixMilli()%1_000_000, rand.Intn(1000))
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", apperr.Conflict("Could not allocate an order number, please retry")
}

// Get returns an order the caller may read.
func (s *OrderService) Get(ctx context.Context, actor access.Actor, id uint) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.OrderOf(o), access.Read); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("Customer", ownerOnly).
		First(&o, id).Error
	if err != nil {
		return nil, lookup(err, "Order not found")
	}
	return &o, nil
}

// List returns the orders visible to the caller, newest first. Customers see
// their own orders, restaurant owners the orders of their restaurants and
// admins everything.
func (s *OrderService) List(ctx context.Context, actor access.Actor, f OrderFilter) ([]models.Order, Pagination, error) {
	q, err := s.visible(ctx, actor)
	if err != nil {
		return nil, Pagination{}, err
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, Pagination{}, apperr.Validation("Invalid status")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("LOWER(order_number) LIKE ?", like(f.Search))
	}

	orders := []models.Order{}
	page, err := paginate(q, f.Page, 10, &orders, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Restaurant").Preload("Customer", ownerOnly).
			Order("created_at DESC").Order("id DESC")
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return orders, page, nil
}

// Summary counts the caller's visible orders by status.
func (s *OrderService) Summary(ctx context.Context, actor access.Actor) (map[models.OrderStatus]int64, error) {
	q, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	summary := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, st := range models.OrderStatuses {
		summary[st] = 0
	}
	for _, r := range rows {
		summary[r.Status] = r.Count
	}
	return summary, nil
}

// visible scopes the orders table to what the caller may list.
func (s *OrderService) visible(ctx context.Context, actor access.Actor) (*gorm.DB, error) {
	if actor.Anonymous() {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleRestaurant:
		owned := s.db.Model(&models.Restaurant{}).Select("id").Where("owner_id = ?", actor.UserID)
		q = q.Where("restaurant_id IN (?)", owned)
	default:
		q = q.Where("customer_id = ?", actor.UserID)
	}
	return q, nil
}

// Transition moves an order to its next status. Cancellation is delegated to Cancel.
func (s *OrderService) Transition(ctx context.Context, actor access.Actor, id uint, to models.OrderStatus, note string) (*models.Order, error) {
	if !to.Valid() {
		return nil, apperr.Validation("Invalid status")
	}
	if to == models.StatusCancelled {
		return s.Cancel(ctx, actor, id, note)
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.OrderOf(o), access.Transition); err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(o.Status, to); err != nil {
		return nil, err
	}

	prev := o.Status
	if note == "" {
		note = fmt.Sprintf("Order %s", to)
	}
	s.advance(o, to, note)
	if err := saveOrder(s.db.WithContext(ctx), o); err != nil {
		return nil, err
	}
	e := events.FromOrder(events.OrderStatusChanged, o, s.now())
	e.Previous, e.Note = prev, note
	s.publish(ctx, e)
	return o, nil
}

// ForceStatus is the admin override: any target status, ignoring the usual
// order, but never out of delivered or cancelled.
func (s *OrderService) ForceStatus(ctx context.Context, actor access.Actor, id uint, to models.OrderStatus, reason string) (*models.Order, error) {
	if err := access.CanAccess(actor, access.AdminArea{}, access.Mutate); err != nil {
		return nil, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanForce(o.Status, to); err != nil {
		return nil, err
	}

	prev := o.Status
	note := "[ADMIN OVERRIDE] " + reason
	typ := events.OrderStatusChanged
	if to == models.StatusCancelled {
		s.cancel(o, models.RoleAdmin, note)
		typ = events.OrderCancelled
	} else {
		s.advance(o, to, note)
	}
	if err := saveOrder(s.db.WithContext(ctx), o); err != nil {
		return nil, err
	}
	e := events.FromOrder(typ, o, s.now())
	e.Previous, e.Note = prev, note
	s.publish(ctx, e)
	return o, nil
}

// Cancel cancels an order that is not yet delivered or cancelled. A paid
// order records a full refund.
func (s *OrderService) Cancel(ctx context.Context, actor access.Actor, id uint, reason string) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := access.OrderOf(o)
	if err := access.CanAccess(actor, view, access.Read); err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(o.Status, models.StatusCancelled); err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, view, access.Cancel); err != nil {
		return nil, err
	}

	prev := o.Status
	s.cancel(o, actor.Role, reason)
	if err := saveOrder(s.db.WithContext(ctx), o); err != nil {
		return nil, err
	}
	e := events.FromOrder(events.OrderCancelled, o, s.now())
	e.Previous, e.Note = prev, reason
	s.publish(ctx, e)
	return o, nil
}

// Rate records the customer's rating of a delivered order and folds the
// overall score into the restaurant's average.
func (s *OrderService) Rate(ctx context.Context, actor access.Actor, id uint, in RatingInput) (*models.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccess(actor, access.OrderOf(o), access.Rate); err != nil {
		return nil, err
	}
	if o.Status != models.StatusDelivered {
		return nil, apperr.Validation("Only delivered orders can be rated")
	}
	if o.Rating != nil {
		return nil, apperr.Conflict("Order has already been rated")
	}
	if err := validateRating(in); err != nil {
		return nil, err
	}

	o.Rating = &models.OrderRating{
		Food:     in.Food,
		Delivery: in.Delivery,
		Overall:  in.Overall,
		Comment:  in.Comment,
		RatedAt:  s.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveOrder(tx, o); err != nil {
			return err
		}
		var r models.Restaurant
		if err := tx.First(&r, o.RestaurantID).Error; err != nil {
			return err
		}
		count := r.Rating.Count + 1
		avg := (r.Rating.Average*float64(r.Rating.Count) + float64(in.Overall)) / float64(count)
		avg = math.Round(avg*10) / 10
		return tx.Model(&models.Restaurant{}).Where("id = ?", r.ID).Updates(map[string]any{
			"rating_average": avg,
			"rating_count":   count,
		}).Error
	})
	if err != nil {
		o.Rating = nil
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, cache.RestaurantKey(o.RestaurantID))
	s.publish(ctx, events.FromOrder(events.OrderRated, o, s.now()))
	return o, nil
}

func validateRating(in RatingInput) error {
	var fields []apperr.FieldError
	if in.Overall < 1 || in.Overall > 5 {
		fields = append(fields, apperr.FieldError{Field: "overall", Message: "Overall rating must be between 1 and 5"})
	}
	if in.Food != 0 && (in.Food < 1 || in.Food > 5) {
		fields = append(fields, apperr.FieldError{Field: "food", Message: "Food rating must be between 1 and 5"})
	}
	if in.Delivery != 0 && (in.Delivery < 1 || in.Delivery > 5) {
		fields = append(fields, apperr.FieldError{Field: "delivery", Message: "Delivery rating must be between 1 and 5"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed").WithFields(fields...)
	}
	return nil
}

// TrackingQR renders a QR code that links to the order's tracking page.
func (s *OrderService) TrackingQR(ctx context.Context, actor access.Actor, id uint) ([]byte, error) {
	o, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.qr(s.TrackingURL(o))
}

func (s *OrderService) TrackingURL(o *models.Order) string {
	return fmt.Sprintf("%s/orders/%s", s.publicURL, o.OrderNumber)
}

func (s *OrderService) advance(o *models.Order, to models.OrderStatus, note string) {
	now := s.now()
	o.Status = to
	o.Timeline = append(o.Timeline, models.TimelineEntry{Status: to, Timestamp: now, Note: note})
	if to == models.StatusDelivered {
		o.ActualDeliveryTime = &now
		if o.Payment.Status == models.PaymentPending && o.Payment.Method == models.PaymentCash {
			o.Payment.Status = models.PaymentCompleted
			o.Payment.PaidAt = &now
			o.PaymentStatus = models.PaymentCompleted
		}
	}
}

func (s *OrderService) cancel(o *models.Order, by models.UserRole, reason string) {
	now := s.now()
	refund := decimal.Zero
	if o.Payment.Status == models.PaymentCompleted {
		refund = o.Pricing.Total
		o.Payment.Status = models.PaymentRefunded
		o.PaymentStatus = models.PaymentRefunded
	}
	note := "Order cancelled"
	if reason != "" {
		note = reason
	}
	o.Status = models.StatusCancelled
	o.Timeline = append(o.Timeline, models.TimelineEntry{Status: models.StatusCancelled, Timestamp: now, Note: note})
	o.Cancellation = &models.Cancellation{
		Reason:       reason,
		CancelledBy:  by,
		CancelledAt:  now,
		RefundAmount: refund,
	}
}

// saveOrder writes the mutable order fields if the version still matches.
func saveOrder(db *gorm.DB, o *models.Order) error {
	old := o.Version
	o.Version++
	res := db.Model(o).Where("version = ?", old).
		Omit(clause.Associations).
		Select("status", "timeline", "payment", "payment_status", "actual_delivery_time",
			"rating", "cancellation", "version", "updated_at").
		Updates(o)
	if res.Error != nil {
		o.Version = old
		return res.Error
	}
	if res.RowsAffected == 0 {
		o.Version = old
		return apperr.Conflict("Order was modified concurrently, please retry")
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Error().Err(err).
			Str("event", string(e.Type)).
			Str("order_number", e.OrderNumber).
			Msg("failed to publish order event")
	}
}
