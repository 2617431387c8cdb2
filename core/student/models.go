package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/minicrm/core"
)

type Student struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Dept      string    `db:"dept" json:"dept"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// NewStudent contains information needed to create or edit a Student.
type NewStudent struct {
	Name  string `form:"name" validate:"required,notblank"`
	Email string `form:"email" validate:"required,notblank"`
	Phone string `form:"phone"`
	Dept  string `form:"dept"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Dept = core.CleanString(ns.Dept)
	return validate.Struct(ns)
}

// Sort is one of the supported list orderings.
type Sort string

const (
	SortCreatedDesc Sort = "created_at_desc"
	SortCreatedAsc  Sort = "created_at_asc"
	SortNameAsc     Sort = "name_asc"
	SortNameDesc    Sort = "name_desc"
)

// ParseSort falls back to SortCreatedDesc for unknown keys.
func ParseSort(s string) Sort {
	switch srt := Sort(core.CleanString(s, true /* lower */)); srt {
	case SortCreatedDesc, SortCreatedAsc, SortNameAsc, SortNameDesc:
		return srt
	default:
		return SortCreatedDesc
	}
}

// Orderings always end with the id so that pages partition the result set.
func (s Sort) Orderings() []core.DBOrdering {
	switch s {
	case SortCreatedAsc:
		return []core.DBOrdering{{Field: "created_at", Ascending: true}, {Field: "id", Ascending: true}}
	case SortNameAsc:
		return []core.DBOrdering{{Field: "name", Ascending: true}, {Field: "id", Ascending: true}}
	case SortNameDesc:
		return []core.DBOrdering{{Field: "name"}, {Field: "id"}}
	default:
		return []core.DBOrdering{{Field: "created_at"}, {Field: "id"}}
	}
}

type QueryFilter struct {
	Search string `query:"q"`
	Dept   string `query:"dept"`
	Sort   Sort   `query:"sort"`
	Page   string `query:"page"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Dept = core.CleanString(qf.Dept)
	qf.Sort = ParseSort(string(qf.Sort))
}

type ListResult struct {
	Students   []Student `json:"students"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Depts      []string  `json:"depts"`
}

// MonthCount is the number of students registered in a YYYY-MM month.
type MonthCount struct {
	Month string `db:"ym" json:"month"`
	Total int    `db:"total" json:"total"`
}
