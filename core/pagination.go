package core

import (
	"math"
	"strconv"
)

// Page selects a 1-based slice of an ordered result set.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to [1, math.MaxInt/size] and size to at least 1,
// so that the offset and the end of the page never overflow.
func NewPage(number, size int) Page {
	if size < 1 {
		size = 1
	}
	if number < 1 {
		number = 1
	}
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

// ParsePageNumber reads a page query parameter; anything that is not a positive integer is page 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Limit() int { return p.Size }

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Slice returns the bounds of the page within a list of n items.
func (p Page) Slice(n int) (start, end int) {
	start = p.Offset()
	if start > n {
		start = n
	}
	end = start + p.Size
	if end > n {
		end = n
	}
	return start, end
}
