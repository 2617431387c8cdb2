package dashboard

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
)

type (
	Counter interface {
		Count(ctx context.Context) (int, error)
	}

	StudentStats interface {
		Counter
		MonthlyRegistrations(ctx context.Context) ([]student.MonthCount, error)
	}

	ProductStats interface {
		Counter
		HighestPriced(ctx context.Context) (*product.Product, error)
	}
)

type Summary struct {
	Users    int `json:"users"`
	Students int `json:"students"`
	Products int `json:"products"`
	Orders   int `json:"orders"`
	// TopProduct is nil when there are no products.
	TopProduct *product.Product `json:"top_product"`
	// Months holds student registrations per YYYY-MM, newest month first.
	Months []student.MonthCount `json:"months"`
}

type Service struct {
	users    Counter
	students StudentStats
	products ProductStats
	orders   Counter
}

func NewService(users Counter, students StudentStats, products ProductStats, orders Counter) *Service {
	return &Service{users: users, students: students, products: products, orders: orders}
}

func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.Users, err = svc.users.Count(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting users")
	}
	if sum.Students, err = svc.students.Count(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting students")
	}
	if sum.Products, err = svc.products.Count(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting products")
	}
	if sum.Orders, err = svc.orders.Count(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting orders")
	}
	if sum.TopProduct, err = svc.products.HighestPriced(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "getting highest priced product")
	}
	if sum.Months, err = svc.students.MonthlyRegistrations(ctx); err != nil {
		return Summary{}, errors.Wrap(err, "counting monthly registrations")
	}
	if sum.Months == nil {
		sum.Months = []student.MonthCount{}
	}
	return sum, nil
}
