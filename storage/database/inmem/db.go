// Package inmemdb implements the core repositories in memory, for tests and local runs.
package inmemdb

import (
	"strings"
	"sync"

	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/core/user"
)

// DB holds every table behind a single lock, so multi-table writes are atomic.
type DB struct {
	mutex    sync.RWMutex
	seq      map[string]int64
	users    map[int64]*user.User
	students map[int64]*student.Student
	products map[int64]*product.Product
	orders   map[int64]*order.Order
	feedback []feedback.Feedback
}

func Open() (*DB, error) {
	db := &DB{seq: make(map[string]int64)}
	db.reset()
	return db, nil
}

func (db *DB) reset() {
	db.seq = make(map[string]int64)
	db.users = make(map[int64]*user.User)
	db.students = make(map[int64]*student.Student)
	db.products = make(map[int64]*product.Product)
	db.orders = make(map[int64]*order.Order)
	db.feedback = nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
