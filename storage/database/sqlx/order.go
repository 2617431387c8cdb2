package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/storage/database"
)

type orderRepository struct {
	db core.DB
}

var _ order.Repository = (*orderRepository)(nil)

func NewOrderRepository(db core.DB) *orderRepository {
	return &orderRepository{db: db}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	err := database.WithTx(ctx, repo.db, func(tx core.DBTransactor) error {
		id, err := database.Insert(
			ctx, tx,
			"INSERT INTO orders (user_id, total, created_at) VALUES (?, ?, ?)",
			o.UserID, o.Total, o.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "inserting order")
		}
		o.ID = id

		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			if item.ID, err = database.Insert(
				ctx, tx,
				"INSERT INTO order_items (order_id, product_id, qty, price) VALUES (?, ?, ?, ?)",
				item.OrderID, item.ProductID, item.Qty, item.Price,
			); err != nil {
				return errors.Wrap(err, "inserting order item")
			}
		}
		return nil
	})
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (repo *orderRepository) QueryOrdersByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	var orders []order.Order
	err := database.Select(
		ctx, repo.db, &orders,
		"SELECT id, user_id, total, created_at FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	idx := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		idx[o.ID] = i
		orders[i].Items = []order.Item{}
	}

	var items []order.Item
	err = database.SelectIn(
		ctx, repo.db, &items,
		"SELECT id, order_id, product_id, qty, price FROM order_items WHERE order_id IN (?) ORDER BY id",
		ids,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying order items")
	}
	for _, item := range items {
		i := idx[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, nil
}

func (repo *orderRepository) CountOrders(ctx context.Context) (int, error) {
	n, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM orders")
	return n, errors.Wrap(err, "counting orders")
}
