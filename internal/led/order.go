package led

import (
	"fmt"
	"strings"
)

// Order is the colour order a strip expects on the wire, e.g. "GRB".
type Order [3]byte

var (
	RGB = Order{'R', 'G', 'B'}
	GRB = Order{'G', 'R', 'B'}
)

// ParseOrder accepts any permutation of R, G and B, case-insensitive.
func ParseOrder(s string) (Order, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return Order{}, fmt.Errorf("led: bad colour order %q", s)
	}
	var o Order
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		c := s[i]
		if (c != 'R' && c != 'G' && c != 'B') || seen[c] {
			return Order{}, fmt.Errorf("led: bad colour order %q", s)
		}
		seen[c] = true
		o[i] = c
	}
	return o, nil
}

func (o Order) String() string { return string(o[:]) }

// Apply writes rgb into dst reordered for the wire. dst and rgb may be the
// same slice.
func (o Order) Apply(dst, rgb []byte) {
	for i := 0; i+2 < len(rgb) && i+2 < len(dst); i += 3 {
		r, g, b := rgb[i], rgb[i+1], rgb[i+2]
		for j := 0; j < 3; j++ {
			switch o[j] {
			case 'R':
				dst[i+j] = r
			case 'G':
				dst[i+j] = g
			default:
				dst[i+j] = b
			}
		}
	}
}
