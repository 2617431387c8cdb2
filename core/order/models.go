package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/minicrm/core/product"
)

type Order struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // UTC
	Items     []Item          `db:"-" json:"items"`
}

// Item is an ordered product. Price is the unit price at checkout time.
type Item struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Qty       int             `db:"qty" json:"qty"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// Line is a cart entry resolved against the current product catalog.
type Line struct {
	Product   product.Product `json:"product"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}
