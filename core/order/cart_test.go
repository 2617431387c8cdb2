package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart(t *testing.T) {
	cart := NewCart()
	assert.True(t, cart.Empty())
	assert.Equal(t, []int64{}, cart.ProductIDs())

	cart.Add(3)
	cart.Add(1)
	cart.Add(3)
	assert.False(t, cart.Empty())
	assert.Equal(t, 3, cart.Count())
	assert.Equal(t, []int64{1, 3}, cart.ProductIDs())
	assert.Equal(t, 2, cart[3])

	cp := cart.Copy()
	cart.Add(1)
	assert.Equal(t, 1, cp[1], "copies do not share entries")

	cart.Clear()
	assert.True(t, cart.Empty())
	assert.Equal(t, 3, cp.Count())
}
