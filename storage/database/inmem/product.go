package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/product"
)

type productRepository struct {
	db *DB
}

var _ product.Repository = (*productRepository)(nil)

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) query() []product.Product {
	products := make([]product.Product, 0, len(repo.db.products))
	for _, p := range repo.db.products {
		products = append(products, *p)
	}
	return products
}

func compareProducts(a, b product.Product, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "price":
		return compareDecimals(a.Price, b.Price)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	default:
		return compareInts(a.ID, b.ID)
	}
}

func sortProducts(products []product.Product, orderings []core.DBOrdering) {
	sort.SliceStable(products, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareProducts(products[i], products[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func (repo *productRepository) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p.ID = repo.db.nextID("products")
	repo.db.products[p.ID] = &p
	return p, nil
}

func (repo *productRepository) GetProductByID(_ context.Context, id int64) (product.Product, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.products[id]; ok {
		return *p, nil
	}
	return product.Product{}, product.ErrNotFound
}

func (repo *productRepository) GetProductsByID(_ context.Context, ids ...int64) ([]product.Product, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	products := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := repo.db.products[id]; ok {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (repo *productRepository) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.products[p.ID]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	orig.Title = p.Title
	orig.Category = p.Category
	orig.Price = p.Price
	orig.Stock = p.Stock
	orig.ImagePath = p.ImagePath
	return *orig, nil
}

func (repo *productRepository) DeleteProductsByID(_ context.Context, ids ...int64) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := repo.db.products[id]; ok {
			delete(repo.db.products, id)
			n++
		}
	}
	return n, nil
}

func (repo *productRepository) FilterProducts(_ context.Context, qf product.QueryFilter, page core.Page) ([]product.Product, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]product.Product, 0)
	for _, p := range repo.query() {
		if qf.Search != "" && !containsFold(p.Title, qf.Search) {
			continue
		}
		if qf.Category != "" && p.Category != qf.Category {
			continue
		}
		matches = append(matches, p)
	}
	sortProducts(matches, qf.Sort.Orderings())

	start, end := page.Slice(len(matches))
	return matches[start:end], len(matches), nil
}

func (repo *productRepository) QueryCategories(_ context.Context) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	cats := make([]string, 0)
	for _, p := range repo.db.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

func (repo *productRepository) CountProducts(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.products), nil
}

func (repo *productRepository) GetHighestPricedProduct(_ context.Context) (product.Product, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	products := repo.query()
	if len(products) == 0 {
		return product.Product{}, product.ErrNotFound
	}
	sortProducts(products, []core.DBOrdering{{Field: "price"}, {Field: "id", Ascending: true}})
	return products[0], nil
}
