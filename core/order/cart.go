package order

import "sort"

// Cart maps a product id to the quantity put in the cart.
type Cart map[int64]int

func NewCart() Cart { return make(Cart) }

// Add puts one more unit of the product in the cart.
func (c Cart) Add(productID int64) {
	c[productID]++
}

func (c Cart) Empty() bool { return len(c) == 0 }

func (c Cart) Clear() {
	for id := range c {
		delete(c, id)
	}
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	var n int
	for _, qty := range c {
		n += qty
	}
	return n
}

// ProductIDs returns the ids in the cart in ascending order.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c Cart) Copy() Cart {
	cp := make(Cart, len(c))
	for id, qty := range c {
		cp[id] = qty
	}
	return cp
}
