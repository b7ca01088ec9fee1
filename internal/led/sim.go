package led

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sim logs a compact summary of the frame (first pixel & avg) instead of
// driving hardware. Summaries are throttled to one per Every.
type Sim struct {
	Count int
	Every time.Duration

	mu       sync.Mutex
	frames   uint64
	lastEmit time.Time
	closed   bool
}

func NewSim(count int) *Sim { return &Sim{Count: count, Every: time.Second} }

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.Count > 0 && len(rgb) != s.Count*3 {
		return ErrLength
	}
	s.frames++

	now := time.Now()
	if s.lastEmit.Add(s.Every).After(now) {
		return nil
	}
	s.lastEmit = now

	var r, g, b float64
	lit := 0
	for i := 0; i+2 < len(rgb); i += 3 {
		r += float64(rgb[i])
		g += float64(rgb[i+1])
		b += float64(rgb[i+2])
		if rgb[i]|rgb[i+1]|rgb[i+2] != 0 {
			lit++
		}
	}
	n := float64(len(rgb) / 3)
	if n == 0 {
		n = 1
	}
	ev := log.Info().Uint64("frame", s.frames).Int("lit", lit).
		Floats64("avg", []float64{r / n, g / n, b / n})
	if len(rgb) >= 3 {
		ev = ev.Ints("first", []int{int(rgb[0]), int(rgb[1]), int(rgb[2])})
	}
	ev.Msg("sim frame")
	return nil
}

// Frames reports how many frames were written.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
