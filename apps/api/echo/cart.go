package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/storage/session"
)

type cartApi struct {
	svc      *order.Service
	products *product.Service
}

func registerCartRoutes(app *echo.Echo, authed echo.MiddlewareFunc, deps *Deps) {
	api := cartApi{
		svc:      deps.OrderSvc,
		products: deps.ProductSvc,
	}

	app.POST("/cart/add/:id", api.add, authed)
	app.GET("/cart", api.view, authed)
	app.POST("/order/checkout", api.checkout, authed)
	app.GET("/orders", api.orders, authed)
}

// Handlers

func (api *cartApi) add(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if _, err = api.products.GetByID(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "getting product")
	}

	getSession(ctx).AddToCart(id)
	return flashRedirect(ctx, session.FlashSuccess, "Added to cart.", "/products")
}

func (api *cartApi) view(ctx echo.Context) error {
	cv, err := api.svc.View(ctx.Request().Context(), getSession(ctx).Cart)
	if err != nil {
		return errors.Wrap(err, "viewing cart")
	}
	return render(ctx, "cart", echo.Map{"cart": cv})
}

func (api *cartApi) checkout(ctx echo.Context) error {
	sess := getSession(ctx)
	if _, err := api.svc.Checkout(ctx.Request().Context(), sess.Principal.ID, sess.Cart); err != nil {
		if errors.Cause(err) == order.ErrEmptyCart {
			return flashRedirect(ctx, session.FlashWarning, "Cart empty.", "/products")
		}
		return errors.Wrap(err, "checking out")
	}

	sess.ClearCart()
	return flashRedirect(ctx, session.FlashSuccess, "Order placed!", "/orders")
}

func (api *cartApi) orders(ctx echo.Context) error {
	orders, err := api.svc.ListForUser(ctx.Request().Context(), getSession(ctx).Principal.ID)
	if err != nil {
		return errors.Wrap(err, "listing orders")
	}
	return render(ctx, "orders", echo.Map{"orders": orders})
}
