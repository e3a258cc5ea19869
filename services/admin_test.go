package services

import (
	"context"
	"testing"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.makeRestaurant(t, f.admin.UserID, "Waiting Room", models.RestaurantPending)
	f.placeOrder(t, models.PaymentCard)
	f.placeOrder(t, models.PaymentCash)

	_, err := f.svc.Admin.Stats(ctx, f.owner)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	d, err := f.svc.Admin.Stats(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Stats.Customers)
	assert.Equal(t, int64(2), d.Stats.Restaurants)
	assert.Equal(t, int64(1), d.Stats.Pending)
	assert.Equal(t, int64(2), d.Stats.Orders)
	assert.Equal(t, int64(3), d.Stats.Products)
	assertMoney(t, "322.5", d.Stats.MonthRevenue)
	assert.Len(t, d.RecentOrders, 2)
}

func TestAdminUsers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	users, page, err := f.svc.Admin.Users(ctx, f.admin, UserFilter{Role: models.RoleRestaurant})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, users, 2)

	users, _, err = f.svc.Admin.Users(ctx, f.admin, UserFilter{Search: "CATHY"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "cathy@example.com", users[0].Email)

	_, _, err = f.svc.Admin.Users(ctx, f.customer, UserFilter{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAdminRestaurants(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	pending := f.makeRestaurant(t, f.admin.UserID, "Waiting Room", models.RestaurantPending)

	list, _, err := f.svc.Admin.Restaurants(ctx, f.admin, RestaurantAdminFilter{Status: models.RestaurantPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	_, _, err = f.svc.Admin.Restaurants(ctx, f.admin, RestaurantAdminFilter{Status: "closed"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	r, err := f.svc.Admin.SetRestaurantStatus(ctx, f.admin, pending.ID, models.RestaurantApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RestaurantApproved, r.Status)
	require.NotNil(t, r.Owner)

	_, err = f.svc.Admin.SetRestaurantStatus(ctx, f.admin, pending.ID, "bogus")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Admin.SetRestaurantStatus(ctx, f.admin, 9999, models.RestaurantApproved)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Admin.SetRestaurantStatus(ctx, f.owner, pending.ID, models.RestaurantRejected)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAdminOrdersSearch(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	o := f.placeOrder(t, models.PaymentCard)
	f.placeOrder(t, models.PaymentCash)

	orders, _, err := f.svc.Admin.Orders(ctx, f.admin, OrderFilter{Search: o.OrderNumber})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)

	_, _, err = f.svc.Admin.Orders(ctx, f.owner, OrderFilter{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestPageCalculate(t *testing.T) {
	offset, limit := Page{}.Calculate(10)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)

	offset, limit = Page{Page: 3, Limit: 500}.Calculate(10)
	assert.Equal(t, 200, offset)
	assert.Equal(t, 100, limit)

	assert.Equal(t, Pagination{Current: 1, Pages: 0, Total: 0}, Page{}.meta(20, 0))
	assert.Equal(t, Pagination{Current: 1, Pages: 3, Total: 21}, Page{}.meta(10, 21))
}
