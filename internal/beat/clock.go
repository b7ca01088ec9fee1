package beat

import "time"

type Phase int

const (
	Rising Phase = iota
	Falling
)

func (p Phase) String() string {
	if p == Rising {
		return "rising"
	}
	return "falling"
}

// Sample is the clock's answer for one tick.
type Sample struct {
	Level   float64 // 0..1
	Phase   Phase
	Rearmed bool // a new cycle started on this tick
}

// Clock tracks one beat cycle: a rising half ending at Mid and a falling half
// ending at End. The zero value is ready to use; the first tick always arms
// a cycle.
type Clock struct {
	mid, end time.Time
	half     time.Duration
	bpm      int
}

// HalfBeat is half of one beat period at bpm. bpm below 1 is treated as 1.
func HalfBeat(bpm int) time.Duration {
	if bpm < 1 {
		bpm = 1
	}
	return time.Minute / time.Duration(bpm) / 2
}

// Tick advances the clock to now. The cycle re-arms when now has passed the
// previous End or when bpm differs from the previous tick's bpm.
func (c *Clock) Tick(now time.Time, bpm int) Sample {
	var s Sample
	if now.After(c.end) || bpm != c.bpm {
		c.half = HalfBeat(bpm)
		c.mid = now.Add(c.half)
		c.end = c.mid.Add(c.half)
		s.Rearmed = true
	}
	c.bpm = bpm

	half := float64(c.half)
	if now.Before(c.mid) {
		s.Phase = Rising
		s.Level = 1 - float64(c.mid.Sub(now))/half
	} else {
		s.Phase = Falling
		s.Level = float64(c.end.Sub(now)) / half
	}
	s.Level = clamp01(s.Level)
	return s
}

// Mid is when the current cycle peaks.
func (c *Clock) Mid() time.Time { return c.mid }

// End is when the current cycle finishes.
func (c *Clock) End() time.Time { return c.end }

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
