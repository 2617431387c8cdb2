package product

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/minicrm/core"
)

type Product struct {
	ID        int64           `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Category  string          `db:"category" json:"category"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	ImagePath null.String     `db:"image_path" json:"image_path"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // UTC
}

// NewProduct contains information needed to create or edit a Product.
// The image is handled apart since it comes as a multipart file.
type NewProduct struct {
	Title    string `form:"title" validate:"required,notblank"`
	Category string `form:"category" validate:"required,notblank"`
	Price    string `form:"price" validate:"required,numeric"`
	Stock    string `form:"stock" validate:"required,number"`
}

// Validate cleans np, validates it and returns its parsed price and stock.
func (np *NewProduct) Validate(validate *validator.Validate) (decimal.Decimal, int, error) {
	np.Title = core.CleanString(np.Title)
	np.Category = core.CleanString(np.Category)
	np.Price = core.CleanString(np.Price)
	np.Stock = core.CleanString(np.Stock)

	if err := validate.Struct(np); err != nil {
		return decimal.Zero, 0, err
	}

	price, err := decimal.NewFromString(np.Price)
	if err != nil || price.IsNegative() {
		return decimal.Zero, 0, core.NewValidationError(ErrInvalidPrice, core.FieldError{Field: "price", Error: ErrInvalidPrice.Error()})
	}
	stock, err := parseStock(np.Stock)
	if err != nil {
		return decimal.Zero, 0, core.NewValidationError(ErrInvalidStock, core.FieldError{Field: "stock", Error: ErrInvalidStock.Error()})
	}
	return price.Round(2), stock, nil
}

// Sort is one of the supported list orderings.
type Sort string

const (
	SortCreatedDesc Sort = "created_at_desc"
	SortCreatedAsc  Sort = "created_at_asc"
	SortTitleAsc    Sort = "title_asc"
	SortTitleDesc   Sort = "title_desc"
	SortPriceAsc    Sort = "price_asc"
	SortPriceDesc   Sort = "price_desc"
)

// ParseSort falls back to SortCreatedDesc for unknown keys.
func ParseSort(s string) Sort {
	switch srt := Sort(core.CleanString(s, true /* lower */)); srt {
	case SortCreatedDesc, SortCreatedAsc, SortTitleAsc, SortTitleDesc, SortPriceAsc, SortPriceDesc:
		return srt
	default:
		return SortCreatedDesc
	}
}

// Orderings always end with the id so that pages partition the result set.
func (s Sort) Orderings() []core.DBOrdering {
	var field string
	var asc bool
	switch s {
	case SortCreatedAsc:
		field, asc = "created_at", true
	case SortTitleAsc:
		field, asc = "title", true
	case SortTitleDesc:
		field = "title"
	case SortPriceAsc:
		field, asc = "price", true
	case SortPriceDesc:
		field = "price"
	default:
		field = "created_at"
	}
	return []core.DBOrdering{{Field: field, Ascending: asc}, {Field: "id", Ascending: asc}}
}

type QueryFilter struct {
	Search   string `query:"q"`
	Category string `query:"cat"`
	Sort     Sort   `query:"sort"`
	Page     string `query:"page"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.Sort = ParseSort(string(qf.Sort))
}

type ListResult struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Categories []string  `json:"categories"`
}
