package quantity

import "math/big"

// Scale divides q by yield. Absent or non-positive quantities and
// non-positive yields are returned unchanged.
func Scale(q Quantity, yield int) Quantity {
	return ScaleTo(q, yield, 1)
}

// ScaleTo rescales q from yield servings to the given number of servings,
// computing q * servings / yield exactly. Degenerate inputs (absent or
// non-positive q, non-positive yield or servings) return q unchanged.
func ScaleTo(q Quantity, yield, servings int) Quantity {
	if !q.Present() || q.Sign() <= 0 || yield <= 0 || servings <= 0 {
		return q
	}
	factor := big.NewRat(int64(servings), int64(yield))
	return Quantity{r: new(big.Rat).Mul(q.r, factor)}
}
