package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/session"
	"github.com/trezcool/minicrm/testutil"
)

func dec(t *testing.T, v interface{}) decimal.Decimal {
	s, ok := v.(string)
	require.True(t, ok, "decimal: %v", v)
	return decimal.RequireFromString(s)
}

func Test_cartApi_addAndView(t *testing.T) {
	ta := setup(t)
	ta.loginAs(t, "user@test.cd", user.RoleUser)

	pen := testutil.CreateProduct(t, ta.productRepo, "Pen", "Office", "1.10", 10)
	mug := testutil.CreateProduct(t, ta.productRepo, "Mug", "Kitchen", "7.25", 3)
	addPath := func(p product.Product) string { return fmt.Sprintf("/cart/add/%d", p.ID) }

	added := flash(session.FlashSuccess, "Added to cart.")
	tests := []httpTest{
		{name: "add pen", method: http.MethodPost, path: addPath(pen), wantLocation: "/products", wantFlash: added},
		{name: "add pen again", method: http.MethodPost, path: addPath(pen), wantLocation: "/products", wantFlash: added},
		{name: "add pen a third time", method: http.MethodPost, path: addPath(pen), wantLocation: "/products", wantFlash: added},
		{name: "add mug", method: http.MethodPost, path: addPath(mug), wantLocation: "/products", wantFlash: added},
		{name: "add unknown product", method: http.MethodPost, path: "/cart/add/999", wantLocation: "/products", wantFlash: flash(session.FlashWarning, "Product not found.")},
		{name: "add non numeric id", method: http.MethodPost, path: "/cart/add/lol", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta.run(t, tt)
		})
	}
	assert.Equal(t, order.Cart{pen.ID: 3, mug.ID: 1}, ta.session(t).Cart)

	data := page(t, ta.get("/cart"))
	assert.Equal(t, "cart", data["view"])
	cart := data["cart"].(map[string]interface{})
	lines := cart["lines"].([]interface{})
	require.Len(t, lines, 2)
	first := lines[0].(map[string]interface{})
	assert.Equal(t, float64(3), first["qty"])
	assert.True(t, decimal.RequireFromString("3.30").Equal(dec(t, first["line_total"])))
	assert.True(t, decimal.RequireFromString("10.55").Equal(dec(t, cart["total"])), "total = %v", cart["total"])

	// lines of deleted products are skipped
	_, err := ta.productRepo.DeleteProductsByID(context.Background(), mug.ID)
	require.NoError(t, err)
	cart = page(t, ta.get("/cart"))["cart"].(map[string]interface{})
	assert.Len(t, cart["lines"], 1)
	assert.True(t, decimal.RequireFromString("3.30").Equal(dec(t, cart["total"])))
}

func Test_cartApi_checkout(t *testing.T) {
	ta := setup(t)
	usr := ta.loginAs(t, "user@test.cd", user.RoleUser)

	pen := testutil.CreateProduct(t, ta.productRepo, "Pen", "Office", "1.50", 10)
	mug := testutil.CreateProduct(t, ta.productRepo, "Mug", "Kitchen", "7.25", 3)
	cartEmpty := flash(session.FlashWarning, "Cart empty.")

	ta.run(t, httpTest{name: "empty cart", method: http.MethodPost, path: "/order/checkout", wantLocation: "/products", wantFlash: cartEmpty})

	ta.post(fmt.Sprintf("/cart/add/%d", pen.ID), nil)
	ta.post(fmt.Sprintf("/cart/add/%d", pen.ID), nil)
	ta.post(fmt.Sprintf("/cart/add/%d", mug.ID), nil)

	ta.run(t, httpTest{
		name: "checkout", method: http.MethodPost, path: "/order/checkout",
		wantLocation: "/orders", wantFlash: flash(session.FlashSuccess, "Order placed!"),
	})
	assert.True(t, ta.session(t).Cart.Empty(), "the cart is cleared")

	// prices are snapshotted at checkout
	_, err := ta.productRepo.UpdateProduct(context.Background(), product.Product{
		ID: pen.ID, Title: pen.Title, Category: pen.Category, Price: decimal.NewFromInt(99), Stock: pen.Stock,
	})
	require.NoError(t, err)

	orders, err := ta.orderRepo.QueryOrdersByUser(context.Background(), usr.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.True(t, decimal.RequireFromString("10.25").Equal(o.Total), "total = %s", o.Total)
	require.Len(t, o.Items, 2)
	for _, item := range o.Items {
		switch item.ProductID {
		case pen.ID:
			assert.Equal(t, 2, item.Qty)
			assert.True(t, decimal.RequireFromString("1.50").Equal(item.Price))
		case mug.ID:
			assert.Equal(t, 1, item.Qty)
			assert.True(t, decimal.RequireFromString("7.25").Equal(item.Price))
		default:
			t.Errorf("unexpected item %+v", item)
		}
	}

	refreshed, err := ta.productRepo.GetProductByID(context.Background(), pen.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, refreshed.Stock, "stock is not decremented")

	data := page(t, ta.get("/orders"))
	assert.Equal(t, "orders", data["view"])
	listed := data["orders"].([]interface{})
	require.Len(t, listed, 1)
	assert.True(t, decimal.RequireFromString("10.25").Equal(dec(t, listed[0].(map[string]interface{})["total"])))
	assert.Len(t, listed[0].(map[string]interface{})["items"], 2)

	// a cart whose products are all gone is empty
	ta.post(fmt.Sprintf("/cart/add/%d", mug.ID), nil)
	_, err = ta.productRepo.DeleteProductsByID(context.Background(), mug.ID)
	require.NoError(t, err)
	ta.run(t, httpTest{name: "stale cart", method: http.MethodPost, path: "/order/checkout", wantLocation: "/products", wantFlash: cartEmpty})

	count, err := ta.orderRepo.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_cartApi_ordersAreOwnedByTheirUser(t *testing.T) {
	ta := setup(t)
	pen := testutil.CreateProduct(t, ta.productRepo, "Pen", "Office", "1.50", 10)

	ta.loginAs(t, "first@test.cd", user.RoleUser)
	ta.post(fmt.Sprintf("/cart/add/%d", pen.ID), nil)
	ta.run(t, httpTest{method: http.MethodPost, path: "/order/checkout", wantLocation: "/orders"})
	assert.Len(t, page(t, ta.get("/orders"))["orders"], 1)

	ta.get("/logout")
	ta.loginAs(t, "second@test.cd", user.RoleUser)
	assert.Len(t, page(t, ta.get("/orders"))["orders"], 0)
	assert.True(t, ta.session(t).Cart.Empty(), "carts are not shared between sessions")
}
