package quantity

import (
	"math/big"
	"strings"
)

// MaxDenominator bounds the denominator of rendered fractions.
// Values needing a larger denominator are shown as the closest fraction
// within the bound, so 0.333333333 renders as 1/3.
const MaxDenominator = 1_000_000

// decimalPlaces is the precision used by decimal rendering and fallbacks.
const decimalPlaces = 6

// Render formats q as an integer or "n/d" with a denominator no larger than
// MaxDenominator. Absent quantities render as "".
func Render(q Quantity) string {
	return RenderLimit(q, MaxDenominator)
}

// RenderLimit is Render with an explicit denominator bound. A bound below 1
// cannot be honoured; the value is then rendered as decimal text.
func RenderLimit(q Quantity, maxDenominator int64) string {
	if !q.Present() {
		return ""
	}
	if maxDenominator < 1 {
		return decimalText(q.r, decimalPlaces)
	}

	f := limitDenominator(q.r, big.NewInt(maxDenominator))
	if f.IsInt() {
		return f.Num().String()
	}
	return f.Num().String() + "/" + f.Denom().String()
}

// RenderDecimal formats q as a decimal with at most three fractional digits.
func RenderDecimal(q Quantity) string {
	if !q.Present() {
		return ""
	}
	return decimalText(q.r, 3)
}

func decimalText(r *big.Rat, places int) string {
	s := r.FloatString(places)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// limitDenominator returns the closest rational to r whose denominator is at
// most limit, walking the continued fraction expansion of r. When two
// candidates are equally close the one with the smaller denominator wins.
func limitDenominator(r *big.Rat, limit *big.Int) *big.Rat {
	if r.Denom().Cmp(limit) <= 0 {
		return new(big.Rat).Set(r)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())

	a := new(big.Int)
	q2 := new(big.Int)
	tmp := new(big.Int)
	for d.Sign() != 0 {
		a.Div(n, d) // Euclidean division floors for positive d
		q2.Mul(a, q1)
		q2.Add(q2, q0)
		if q2.Cmp(limit) > 0 {
			break
		}
		p2 := new(big.Int).Mul(a, p1)
		p2.Add(p2, p0)
		p0, q0, p1, q1 = p1, q1, p2, new(big.Int).Set(q2)

		tmp.Mul(a, d)
		n, d = d, new(big.Int).Sub(n, tmp)
	}

	// k = (limit - q0) / q1
	k := new(big.Int).Sub(limit, q0)
	k.Div(k, q1)

	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	diff1 := new(big.Rat).Sub(bound1, r)
	diff1.Abs(diff1)
	diff2 := new(big.Rat).Sub(bound2, r)
	diff2.Abs(diff2)
	if diff2.Cmp(diff1) <= 0 {
		return bound2
	}
	return bound1
}
