package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/storage/database"
)

const productColumns = "id, title, category, price, stock, image_path, created_at"

type productRepository struct {
	db core.DB
}

var _ product.Repository = (*productRepository)(nil)

func NewProductRepository(db core.DB) *productRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	id, err := database.Insert(
		ctx, repo.db,
		"INSERT INTO products (title, category, price, stock, image_path, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.Title, p.Category, p.Price, p.Stock, p.ImagePath, p.CreatedAt,
	)
	if err != nil {
		return product.Product{}, errors.Wrap(err, "inserting product")
	}
	p.ID = id
	return p, nil
}

func (repo *productRepository) GetProductByID(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product
	err := database.Get(ctx, repo.db, &p, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	if err != nil {
		return product.Product{}, trapNoRowsErr(err, product.ErrNotFound, "getting product by id")
	}
	return p, nil
}

func (repo *productRepository) GetProductsByID(ctx context.Context, ids ...int64) ([]product.Product, error) {
	products := make([]product.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	err := database.SelectIn(ctx, repo.db, &products, "SELECT "+productColumns+" FROM products WHERE id IN (?) ORDER BY id", ids)
	return products, errors.Wrap(err, "getting products by id")
}

func (repo *productRepository) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	n, err := database.Exec(
		ctx, repo.db,
		"UPDATE products SET title = ?, category = ?, price = ?, stock = ?, image_path = ? WHERE id = ?",
		p.Title, p.Category, p.Price, p.Stock, p.ImagePath, p.ID,
	)
	if err != nil {
		return product.Product{}, errors.Wrap(err, "updating product")
	}
	if n == 0 {
		return product.Product{}, product.ErrNotFound
	}
	return repo.GetProductByID(ctx, p.ID)
}

func (repo *productRepository) DeleteProductsByID(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := database.ExecIn(ctx, repo.db, "DELETE FROM products WHERE id IN (?)", ids)
	return n, errors.Wrap(err, "deleting products")
}

func (repo *productRepository) FilterProducts(ctx context.Context, qf product.QueryFilter, page core.Page) ([]product.Product, int, error) {
	f := new(filter)
	if qf.Search != "" {
		f.add("title "+database.DialectOf(repo.db).Like()+" ?", database.LikePattern(qf.Search))
	}
	if qf.Category != "" {
		f.add("category = ?", qf.Category)
	}

	total, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM products"+f.where(), f.args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting products")
	}

	var products []product.Product
	q := "SELECT " + productColumns + " FROM products" + f.where() + orderBy(qf.Sort.Orderings()) + " LIMIT ? OFFSET ?"
	args := append(f.args, page.Limit(), page.Offset())
	if err = database.Select(ctx, repo.db, &products, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering products")
	}
	return products, total, nil
}

func (repo *productRepository) QueryCategories(ctx context.Context) ([]string, error) {
	cats := make([]string, 0)
	err := database.Select(ctx, repo.db, &cats, "SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category")
	return cats, errors.Wrap(err, "querying categories")
}

func (repo *productRepository) CountProducts(ctx context.Context) (int, error) {
	n, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM products")
	return n, errors.Wrap(err, "counting products")
}

func (repo *productRepository) GetHighestPricedProduct(ctx context.Context) (product.Product, error) {
	var p product.Product
	err := database.Get(ctx, repo.db, &p, "SELECT "+productColumns+" FROM products ORDER BY price DESC, id ASC LIMIT 1")
	if err != nil {
		return product.Product{}, trapNoRowsErr(err, product.ErrNotFound, "getting highest priced product")
	}
	return p, nil
}
