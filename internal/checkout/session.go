// Package checkout holds the cart a cashier builds before submitting a sale.
//
// A Session is a plain value owned by whoever drives the checkout (an HTTP
// request, a test). It never touches storage; CheckoutService re-reads prices
// and re-validates stock when the session is submitted.
package checkout

import (
	"errors"
	"fmt"

	"tobaku-pos/internal/model"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and 1000000")
	ErrInsufficientStock    = errors.New("quantity exceeds available stock")
	ErrInvalidDiscount      = errors.New("discount must be between 0 and 100 percent")
	ErrInvalidPaymentMethod = errors.New("payment method must be cash or non-cash")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrLineNotFound         = errors.New("product is not in the cart")
)

// Line is one cart row. UnitPrice and Available are what the cashier saw when
// the product was added.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"product_name"`
	Category  string    `json:"category"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
}

func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

type Totals struct {
	Subtotal        int64 `json:"subtotal"`
	DiscountPercent int   `json:"discount_percent"`
	DiscountAmount  int64 `json:"discount_amount"`
	Total           int64 `json:"total"`
}

// ComputeTotals sums the lines and applies a whole-number percentage
// discount, rounding the discount amount down.
func ComputeTotals(lines []Line, discountPercent int) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Total()
	}
	discount := subtotal * int64(discountPercent) / 100
	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Total:           subtotal - discount,
	}
}

// DiscountNote builds the transaction note. The discount is only kept as text.
func DiscountNote(discountPercent int, note string) string {
	if discountPercent <= 0 {
		return note
	}
	summary := fmt.Sprintf("Diskon: %d%%", discountPercent)
	if note == "" {
		return summary
	}
	return summary + " - " + note
}

func ValidDiscount(pct int) bool {
	return pct >= 0 && pct <= 100
}

func validQuantity(qty int) bool {
	return qty > 0 && qty <= model.MaxQuantity
}

func ValidPaymentMethod(m model.PaymentMethod) bool {
	return m == model.PaymentCash || m == model.PaymentNonCash
}

type Session struct {
	lines    []Line
	discount int
	payment  model.PaymentMethod
}

func NewSession() *Session {
	return &Session{payment: model.PaymentCash}
}

// AddItem puts qty units of p in the cart, merging with an existing line for
// the same product. The merged quantity may not exceed p.Stock or MaxQuantity.
func (s *Session) AddItem(p model.Product, qty int) error {
	if !validQuantity(qty) {
		return ErrInvalidQuantity
	}
	if i := s.index(p.ID); i >= 0 {
		if qty > model.MaxQuantity-s.lines[i].Quantity {
			return ErrInvalidQuantity
		}
		merged := s.lines[i].Quantity + qty
		if merged > p.Stock {
			return ErrInsufficientStock
		}
		s.lines[i].Quantity = merged
		s.lines[i].Available = p.Stock
		return nil
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.SellPrice,
		Quantity:  qty,
		Available: p.Stock,
	})
	return nil
}

// SetQuantity changes a line's quantity. Zero or less removes the line.
func (s *Session) SetQuantity(productID uuid.UUID, qty int) error {
	i := s.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		s.Remove(productID)
		return nil
	}
	if qty > model.MaxQuantity {
		return ErrInvalidQuantity
	}
	if qty > s.lines[i].Available {
		return ErrInsufficientStock
	}
	s.lines[i].Quantity = qty
	return nil
}

func (s *Session) Remove(productID uuid.UUID) {
	if i := s.index(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

func (s *Session) SetDiscount(pct int) error {
	if !ValidDiscount(pct) {
		return ErrInvalidDiscount
	}
	s.discount = pct
	return nil
}

func (s *Session) SetPaymentMethod(m model.PaymentMethod) error {
	if !ValidPaymentMethod(m) {
		return ErrInvalidPaymentMethod
	}
	s.payment = m
	return nil
}

// Lines returns a copy of the cart rows in the order they were added.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Session) Totals() Totals {
	return ComputeTotals(s.lines, s.discount)
}

func (s *Session) DiscountPercent() int               { return s.discount }
func (s *Session) PaymentMethod() model.PaymentMethod { return s.payment }
func (s *Session) IsEmpty() bool                      { return len(s.lines) == 0 }

// Clear empties the cart and resets discount and payment method.
func (s *Session) Clear() {
	s.lines = nil
	s.discount = 0
	s.payment = model.PaymentCash
}

func (s *Session) index(productID uuid.UUID) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
