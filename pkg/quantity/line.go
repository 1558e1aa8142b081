package quantity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line is an ingredient split into its leading quantity and description.
type Line struct {
	Quantity    Quantity
	Description string
}

// Split separates the leading quantity of an ingredient line from its
// description. The quantity candidate is the longest leading run of digits,
// '.', '/' and whitespace. When that run does not parse, the quantity is
// absent and the whole trimmed line becomes the description.
func Split(raw string) Line {
	n := quantityPrefixLen(raw)
	q, err := Parse(raw[:n])
	if err != nil {
		return Line{Description: strings.TrimSpace(raw)}
	}
	return Line{
		Quantity:    q,
		Description: strings.TrimSpace(raw[n:]),
	}
}

// quantityPrefixLen returns the byte length of the leading quantity run.
func quantityPrefixLen(s string) int {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isQuantityRune(r) {
			break
		}
		i += size
	}
	return i
}

func isQuantityRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == '/' || unicode.IsSpace(r)
}

// Scale returns a copy of l with its quantity divided by yield.
func (l Line) Scale(yield int) Line {
	return Line{Quantity: Scale(l.Quantity, yield), Description: l.Description}
}

// ScaleTo returns a copy of l rescaled from yield servings to servings.
func (l Line) ScaleTo(yield, servings int) Line {
	return Line{Quantity: ScaleTo(l.Quantity, yield, servings), Description: l.Description}
}

// String composes "<quantity> <description>". The quantity segment is
// omitted when absent.
func (l Line) String() string {
	return l.Format(Render)
}

// Format composes the line using render for the quantity segment.
func (l Line) Format(render func(Quantity) string) string {
	qty := render(l.Quantity)
	if qty == "" {
		return strings.TrimSpace(l.Description)
	}
	return strings.TrimSpace(qty + " " + l.Description)
}
