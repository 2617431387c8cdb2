// Package session keeps the per-browser state of the app (identity, cart and flash notices)
// on the server side. The browser only holds a signed token naming its session.
package session

import (
	"github.com/google/uuid"

	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/user"
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type Session struct {
	ID        string          `json:"id"`
	Principal *user.Principal `json:"principal,omitempty"`
	Cart      order.Cart      `json:"cart,omitempty"`
	Flashes   []Flash         `json:"flashes,omitempty"`

	isNew bool
	dirty bool
}

// New returns an empty session with a fresh random id.
func New() *Session {
	return &Session{ID: uuid.NewString(), isNew: true}
}

// IsNew reports whether the browser does not know this session yet.
func (s *Session) IsNew() bool { return s.isNew }

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) markSaved() {
	s.isNew = false
	s.dirty = false
}

// Login stores the principal and starts an empty cart if there is none.
func (s *Session) Login(p *user.Principal) {
	s.Principal = p
	if s.Cart == nil {
		s.Cart = order.NewCart()
	}
	s.dirty = true
}

// Clear drops the principal, the cart and pending flashes.
func (s *Session) Clear() {
	s.Principal = nil
	s.Cart = nil
	s.Flashes = nil
	s.dirty = true
}

func (s *Session) AddFlash(category, msg string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: msg})
	s.dirty = true
}

// PopFlashes returns the pending flashes and forgets them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	if len(flashes) > 0 {
		s.Flashes = nil
		s.dirty = true
	}
	if flashes == nil {
		flashes = []Flash{}
	}
	return flashes
}

// AddToCart puts one more unit of the product in the cart.
func (s *Session) AddToCart(productID int64) {
	if s.Cart == nil {
		s.Cart = order.NewCart()
	}
	s.Cart.Add(productID)
	s.dirty = true
}

func (s *Session) ClearCart() {
	s.Cart = order.NewCart()
	s.dirty = true
}

// Copy returns a deep copy of s.
func (s *Session) Copy() *Session {
	cp := *s
	if s.Principal != nil {
		p := *s.Principal
		cp.Principal = &p
	}
	if s.Cart != nil {
		cp.Cart = s.Cart.Copy()
	}
	cp.Flashes = append([]Flash(nil), s.Flashes...)
	return &cp
}
