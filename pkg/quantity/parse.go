package quantity

import (
	"fmt"
	"math/big"
	"strings"
)

// Parse reads a possibly mixed number such as "2", "0.5", "3/4" or
// "1 1/2". Whitespace separated terms are summed. Each term is an integer,
// a decimal, or a simple fraction, optionally signed.
func Parse(text string) (Quantity, error) {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return Absent(), fmt.Errorf("%w: empty", ErrParse)
	}

	sum := new(big.Rat)
	for _, term := range terms {
		r, ok := parseTerm(term)
		if !ok {
			return Absent(), fmt.Errorf("%w: %q", ErrParse, term)
		}
		sum.Add(sum, r)
	}
	return Quantity{r: sum}, nil
}

// parseTerm converts a single term to a rational.
func parseTerm(term string) (*big.Rat, bool) {
	neg := false
	switch {
	case strings.HasPrefix(term, "-"):
		neg = true
		term = term[1:]
	case strings.HasPrefix(term, "+"):
		term = term[1:]
	}

	var r *big.Rat
	var ok bool
	if num, den, isFrac := strings.Cut(term, "/"); isFrac {
		r, ok = parseFraction(num, den)
	} else {
		r, ok = parseDecimal(term)
	}
	if !ok {
		return nil, false
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

func parseFraction(num, den string) (*big.Rat, bool) {
	n, ok := parseDigits(num)
	if !ok {
		return nil, false
	}
	d, ok := parseDigits(den)
	if !ok || d.Sign() == 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(n, d), true
}

// parseDecimal accepts "12", "1.5", ".5" and "1.".
func parseDecimal(s string) (*big.Rat, bool) {
	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, false
	}
	if !hasPoint {
		n, ok := parseDigits(whole)
		if !ok {
			return nil, false
		}
		return new(big.Rat).SetInt(n), true
	}

	digits := whole + frac
	n, ok := parseDigits(digits)
	if !ok {
		return nil, false
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	return new(big.Rat).SetFrac(n, scale), true
}

// parseDigits parses a non-empty run of ASCII digits in base 10.
func parseDigits(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, false
		}
	}
	return new(big.Int).SetString(s, 10)
}
