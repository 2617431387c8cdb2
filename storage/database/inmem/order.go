package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/minicrm/core/order"
)

type orderRepository struct {
	db *DB
}

var _ order.Repository = (*orderRepository)(nil)

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

func copyOrder(o *order.Order) order.Order {
	cp := *o
	cp.Items = append([]order.Item{}, o.Items...)
	return cp
}

func (repo *orderRepository) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	o.ID = repo.db.nextID("orders")
	o.Items = append([]order.Item{}, o.Items...)
	for i := range o.Items {
		o.Items[i].ID = repo.db.nextID("order_items")
		o.Items[i].OrderID = o.ID
	}
	repo.db.orders[o.ID] = &o
	return copyOrder(&o), nil
}

func (repo *orderRepository) QueryOrdersByUser(_ context.Context, userID int64) ([]order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	orders := make([]order.Order, 0)
	for _, o := range repo.db.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if c := compareTimes(orders[i].CreatedAt, orders[j].CreatedAt); c != 0 {
			return c > 0
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (repo *orderRepository) CountOrders(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.orders), nil
}
