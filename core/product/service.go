package product

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/minicrm/core"
)

var (
	// errors
	ErrNotFound     = errors.New("product not found")
	ErrInvalidPrice = errors.New("price must be a non-negative decimal")
	ErrInvalidStock = errors.New("stock must be a non-negative integer")
)

type (
	Repository interface {
		CreateProduct(ctx context.Context, p Product) (Product, error)
		GetProductByID(ctx context.Context, id int64) (Product, error)
		// GetProductsByID returns the existing products among ids, missing ones are skipped.
		GetProductsByID(ctx context.Context, ids ...int64) ([]Product, error)
		UpdateProduct(ctx context.Context, p Product) (Product, error)
		DeleteProductsByID(ctx context.Context, ids ...int64) (int64, error)
		// FilterProducts applies AND on the QueryFilter fields.
		// QueryFilter.Search does a case-insensitive substring match on Product.Title.
		FilterProducts(ctx context.Context, filter QueryFilter, page core.Page) ([]Product, int, error)
		QueryCategories(ctx context.Context) ([]string, error)
		CountProducts(ctx context.Context) (int, error)
		// GetHighestPricedProduct returns ErrNotFound when there are no products.
		GetHighestPricedProduct(ctx context.Context) (Product, error)
	}

	Service struct {
		repo     Repository
		pageSize int
	}
)

func NewService(repo Repository, pageSize int) *Service {
	return &Service{repo: repo, pageSize: pageSize}
}

func parseStock(s string) (int, error) {
	stock, err := strconv.Atoi(s)
	if err != nil || stock < 0 {
		return 0, ErrInvalidStock
	}
	return stock, nil
}

func (svc *Service) List(ctx context.Context, filter QueryFilter) (ListResult, error) {
	filter.Clean()
	page := core.NewPage(core.ParsePageNumber(filter.Page), svc.pageSize)

	products, total, err := svc.repo.FilterProducts(ctx, filter, page)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "filtering products")
	}
	cats, err := svc.repo.QueryCategories(ctx)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "querying categories")
	}
	if products == nil {
		products = []Product{}
	}
	return ListResult{
		Products:   products,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: core.TotalPages(total, page.Size),
		Categories: cats,
	}, nil
}

func (svc *Service) Create(ctx context.Context, np NewProduct, price decimal.Decimal, stock int, image null.String) (Product, error) {
	return svc.repo.CreateProduct(ctx, Product{
		Title:     np.Title,
		Category:  np.Category,
		Price:     price,
		Stock:     stock,
		ImagePath: image,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Product, error) {
	return svc.repo.GetProductByID(ctx, id)
}

// GetMany returns the existing products among ids keyed by id.
func (svc *Service) GetMany(ctx context.Context, ids ...int64) (map[int64]Product, error) {
	products := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	found, err := svc.repo.GetProductsByID(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		products[p.ID] = p
	}
	return products, nil
}

// Update edits a product. The current image is kept when image is not valid.
func (svc *Service) Update(ctx context.Context, id int64, np NewProduct, price decimal.Decimal, stock int, image null.String) (Product, error) {
	orig, err := svc.repo.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !image.Valid {
		image = orig.ImagePath
	}
	return svc.repo.UpdateProduct(ctx, Product{
		ID:        id,
		Title:     np.Title,
		Category:  np.Category,
		Price:     price,
		Stock:     stock,
		ImagePath: image,
		CreatedAt: orig.CreatedAt,
	})
}

// Delete removes one product, ErrNotFound if there was none.
// Order items keep their snapshot of a deleted product.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	n, err := svc.repo.DeleteProductsByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountProducts(ctx)
}

// HighestPriced returns the most expensive product, if any.
func (svc *Service) HighestPriced(ctx context.Context) (*Product, error) {
	p, err := svc.repo.GetHighestPricedProduct(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
