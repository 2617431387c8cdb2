package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/minicrm/core/product"
)

var (
	// errors
	ErrEmptyCart = errors.New("cart is empty")
)

type (
	// ProductFinder resolves cart entries, *product.Service satisfies it.
	ProductFinder interface {
		GetMany(ctx context.Context, ids ...int64) (map[int64]product.Product, error)
	}

	Repository interface {
		// CreateOrder persists the order and its items in a single transaction.
		CreateOrder(ctx context.Context, o Order) (Order, error)
		// QueryOrdersByUser returns the user's orders with their items, newest first.
		QueryOrdersByUser(ctx context.Context, userID int64) ([]Order, error)
		CountOrders(ctx context.Context) (int, error)
	}

	Service struct {
		repo     Repository
		products ProductFinder
	}
)

func NewService(repo Repository, products ProductFinder) *Service {
	return &Service{repo: repo, products: products}
}

// View prices every cart entry with the current product price.
// Entries whose product no longer exists are skipped.
func (svc *Service) View(ctx context.Context, cart Cart) (CartView, error) {
	view := CartView{Lines: []Line{}, Total: decimal.Zero}
	if cart.Empty() {
		return view, nil
	}

	ids := cart.ProductIDs()
	products, err := svc.products.GetMany(ctx, ids...)
	if err != nil {
		return CartView{}, errors.Wrap(err, "getting cart products")
	}
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			continue
		}
		qty := cart[id]
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		view.Lines = append(view.Lines, Line{Product: p, Qty: qty, LineTotal: lineTotal})
		view.Total = view.Total.Add(lineTotal)
	}
	return view, nil
}

// Checkout turns the cart into an order for userID.
// Returns ErrEmptyCart when no cart entry resolves to an existing product.
// Stock is neither checked nor decremented.
func (svc *Service) Checkout(ctx context.Context, userID int64, cart Cart) (Order, error) {
	view, err := svc.View(ctx, cart)
	if err != nil {
		return Order{}, err
	}
	if len(view.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	o := Order{
		UserID:    userID,
		Total:     view.Total,
		CreatedAt: time.Now().UTC(),
		Items:     make([]Item, 0, len(view.Lines)),
	}
	for _, line := range view.Lines {
		o.Items = append(o.Items, Item{
			ProductID: line.Product.ID,
			Qty:       line.Qty,
			Price:     line.Product.Price,
		})
	}

	o, err = svc.repo.CreateOrder(ctx, o)
	if err != nil {
		return Order{}, errors.Wrap(err, "creating order")
	}
	return o, nil
}

func (svc *Service) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := svc.repo.QueryOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountOrders(ctx)
}
