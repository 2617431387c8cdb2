package database

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Dialect is the SQL flavour of a driver, named after it.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

type driverNamer interface {
	DriverName() string
}

// DialectOf returns the dialect of the driver behind db.
func DialectOf(db driverNamer) Dialect {
	if db.DriverName() == string(MySQL) {
		return MySQL
	}
	return Postgres
}

// Like is the case-insensitive LIKE operator.
// MySQL's default collations already compare case-insensitively.
func (d Dialect) Like() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// YearMonth formats a timestamp column as YYYY-MM.
func (d Dialect) YearMonth(col string) string {
	if d == MySQL {
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", col)
	}
	return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	switch d {
	case MySQL:
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == 1062
	default:
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	}
}

// LikePattern wraps s for a substring match, escaping LIKE wildcards.
func LikePattern(s string) string {
	esc := make([]rune, 0, len(s)+2)
	esc = append(esc, '%')
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			esc = append(esc, '\\')
		}
		esc = append(esc, r)
	}
	return string(append(esc, '%'))
}
