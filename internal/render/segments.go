package render

import (
	"math"

	"github.com/coreman2200/funtimes-artery/internal/beat"
)

// Segments renders a repeating pattern of Width lit pixels followed by Gap
// dark pixels, shifted by a fractional scroll offset.
type Segments struct {
	offset float64
}

func (s *Segments) Offset() float64     { return s.offset }
func (s *Segments) SetOffset(v float64) { s.offset = v }

// Lightness returns the HSL lightness of pixel i.
func (s *Segments) Lightness(i int, p beat.Params, level float64) float64 {
	seg := p.Segment()
	whole := math.Floor(s.offset)
	rest := s.offset - whole

	idx := ((i-int(whole))%seg + seg) % seg
	if idx >= p.Width {
		return 0
	}

	l := p.LightMax
	// fade the first and last pixel of the segment by the sub-pixel offset
	if idx == 0 {
		l *= 1 - rest
	}
	if idx == p.Width-1 {
		l *= rest
	}
	return math.Max(l*level, p.LightMin)
}

// Render fills dst, 3 bytes per pixel in RGB order.
func (s *Segments) Render(dst []byte, p beat.Params, level float64) {
	n := len(dst) / 3
	for i := 0; i < n; i++ {
		r, g, b := HSL(p.Hue, 1.0, s.Lightness(i, p, level))
		dst[i*3+0] = r
		dst[i*3+1] = g
		dst[i*3+2] = b
	}
}

// Advance scrolls by Flow/100 pixels and resets to 0 once the offset moves
// past a full segment in either direction.
func (s *Segments) Advance(p beat.Params) {
	s.offset += float64(p.Flow) / 100
	seg := float64(p.Segment())
	if s.offset > seg || s.offset < -seg {
		s.offset = 0
	}
}
