package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
)

// Mode is how Execute runs a statement and shapes its result.
type Mode int

const (
	// ReadOne returns at most one row.
	ReadOne Mode = iota
	// ReadMany returns every row in statement order.
	ReadMany
	// Write returns the generated id of an INSERT and the affected rows count.
	Write
)

// Row maps column names to values. Text columns are returned as strings.
type Row map[string]interface{}

type Result struct {
	Rows     []Row
	Found    bool  // ReadOne
	ID       int64 // Write (INSERT)
	Affected int64 // Write
}

// Execute runs one parameterized statement (`?` placeholders) in the given mode.
// Values are always bound, never interpolated.
func Execute(ctx context.Context, exec core.DBExecutor, stmt string, args []interface{}, mode Mode) (Result, error) {
	switch mode {
	case ReadOne, ReadMany:
		rows, err := exec.QueryxContext(ctx, exec.Rebind(stmt), args...)
		if err != nil {
			return Result{}, errors.Wrap(err, "querying")
		}
		defer func() { _ = rows.Close() }()

		var res Result
		for rows.Next() {
			row := make(map[string]interface{})
			if err = rows.MapScan(row); err != nil {
				return Result{}, errors.Wrap(err, "scanning row")
			}
			res.Rows = append(res.Rows, normalize(row))
			if mode == ReadOne {
				res.Found = true
				break
			}
		}
		if err = rows.Err(); err != nil {
			return Result{}, errors.Wrap(err, "iterating rows")
		}
		return res, nil
	case Write:
		if isInsert(stmt) {
			id, err := Insert(ctx, exec, stmt, args...)
			if err != nil {
				return Result{}, err
			}
			return Result{ID: id, Affected: 1}, nil
		}
		n, err := Exec(ctx, exec, stmt, args...)
		if err != nil {
			return Result{}, err
		}
		return Result{Affected: n}, nil
	default:
		return Result{}, errors.Errorf("unknown execution mode %d", mode)
	}
}

func normalize(row map[string]interface{}) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}

func isInsert(stmt string) bool {
	for i := 0; i < len(stmt); i++ {
		switch stmt[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return len(stmt)-i >= 6 && strings.EqualFold(stmt[i:i+6], "insert")
	}
	return false
}

// Get scans the first row into dest, returns sql.ErrNoRows when there is none.
func Get(ctx context.Context, exec core.DBExecutor, dest interface{}, stmt string, args ...interface{}) error {
	return exec.GetContext(ctx, dest, exec.Rebind(stmt), args...)
}

// Select scans every row into dest, a pointer to a slice.
func Select(ctx context.Context, exec core.DBExecutor, dest interface{}, stmt string, args ...interface{}) error {
	return exec.SelectContext(ctx, dest, exec.Rebind(stmt), args...)
}

// SelectIn is Select for statements with an `IN (?)` bound to a slice argument.
func SelectIn(ctx context.Context, exec core.DBExecutor, dest interface{}, stmt string, args ...interface{}) error {
	q, inArgs, err := sqlx.In(stmt, args...)
	if err != nil {
		return errors.Wrap(err, "expanding IN clause")
	}
	return exec.SelectContext(ctx, dest, exec.Rebind(q), inArgs...)
}

// Insert runs an INSERT and returns the generated id.
func Insert(ctx context.Context, exec core.DBExecutor, stmt string, args ...interface{}) (int64, error) {
	if DialectOf(exec) == Postgres {
		var id int64
		if err := exec.QueryRowxContext(ctx, exec.Rebind(stmt+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(stmt), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Exec runs a statement and returns the number of affected rows.
func Exec(ctx context.Context, exec core.DBExecutor, stmt string, args ...interface{}) (int64, error) {
	res, err := exec.ExecContext(ctx, exec.Rebind(stmt), args...)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// ExecIn is Exec for statements with an `IN (?)` bound to a slice argument:
// one placeholder is generated per element.
func ExecIn(ctx context.Context, exec core.DBExecutor, stmt string, args ...interface{}) (int64, error) {
	q, inArgs, err := sqlx.In(stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "expanding IN clause")
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(q), inArgs...)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "getting affected rows")
	}
	return n, nil
}

// Count runs a `SELECT COUNT(*)` statement.
func Count(ctx context.Context, exec core.DBExecutor, stmt string, args ...interface{}) (int, error) {
	var n int
	if err := Get(ctx, exec, &n, stmt, args...); err != nil {
		return 0, err
	}
	return n, nil
}
