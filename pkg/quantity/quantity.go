// Package quantity parses, rescales and renders ingredient quantities.
//
// Quantities are exact rationals backed by math/big.Rat. Nothing in this
// package converts to floating point; the only lossy step is the bounded
// denominator approximation performed by Render.
package quantity

import (
	"errors"
	"math/big"
)

// ErrParse is returned when text does not describe a numeric quantity.
// Check with errors.Is(err, quantity.ErrParse).
var ErrParse = errors.New("not a numeric quantity")

// Quantity is an exact rational amount, or absent.
// The zero value is absent.
type Quantity struct {
	r *big.Rat
}

// Absent returns a quantity with no value.
func Absent() Quantity {
	return Quantity{}
}

// New returns the quantity num/den. It panics if den is zero.
func New(num, den int64) Quantity {
	return Quantity{r: big.NewRat(num, den)}
}

// FromRat returns a present quantity holding a copy of r.
// A nil r yields an absent quantity.
func FromRat(r *big.Rat) Quantity {
	if r == nil {
		return Absent()
	}
	return Quantity{r: new(big.Rat).Set(r)}
}

// Present reports whether q holds a value.
func (q Quantity) Present() bool {
	return q.r != nil
}

// Rat returns a copy of the underlying rational, or nil when absent.
func (q Quantity) Rat() *big.Rat {
	if q.r == nil {
		return nil
	}
	return new(big.Rat).Set(q.r)
}

// Sign returns -1, 0 or +1. Absent quantities report 0.
func (q Quantity) Sign() int {
	if q.r == nil {
		return 0
	}
	return q.r.Sign()
}

// Equal reports whether q and o are both absent or hold the same value.
func (q Quantity) Equal(o Quantity) bool {
	if q.r == nil || o.r == nil {
		return q.r == nil && o.r == nil
	}
	return q.r.Cmp(o.r) == 0
}

// String renders q with Render.
func (q Quantity) String() string {
	return Render(q)
}
