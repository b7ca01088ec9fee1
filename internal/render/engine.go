package render

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-artery/internal/beat"
	"github.com/coreman2200/funtimes-artery/internal/e131"
)

// DefaultPeriod gives a 20 Hz frame rate.
const DefaultPeriod = 50 * time.Millisecond

// Source supplies a consistent copy of the latest control frame.
type Source interface {
	Snapshot() e131.Frame
}

// Driver abstracts the LED transport. rgb holds 3 bytes per pixel and is
// reused on the next tick, so implementations must not retain it.
type Driver interface {
	Write(rgb []byte) error
}

// Engine decodes parameters, steps the beat clock, renders segments and
// writes the result once per tick.
type Engine struct {
	Src    Source
	Dec    beat.Decoder
	Drv    Driver
	Period time.Duration

	Clock beat.Clock
	Seg   Segments
	Out   []byte

	// Now is the time source for Run; tests may replace it.
	Now func() time.Time

	// state of the last rendered tick
	Last struct {
		Params   beat.Params
		Beat     beat.Sample
		RenderMS float64
		Frames   uint64
	}

	warn zerolog.Logger
}

// NewEngine allocates the pixel buffer for count LEDs.
func NewEngine(count int, src Source, dec beat.Decoder, drv Driver, period time.Duration) (*Engine, error) {
	if count <= 0 {
		return nil, errors.New("render: invalid LED count")
	}
	if src == nil {
		return nil, errors.New("render: nil source")
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Engine{
		Src:    src,
		Dec:    dec,
		Drv:    drv,
		Period: period,
		Out:    make([]byte, count*3),
		Now:    time.Now,
		warn:   log.Sample(&zerolog.BurstSampler{Burst: 3, Period: 5 * time.Second}),
	}, nil
}

// RenderOnce renders and writes a single frame for time now. The scroll
// offset advances even when the driver write fails.
func (e *Engine) RenderOnce(now time.Time) error {
	start := time.Now()

	f := e.Src.Snapshot()
	p := e.Dec.Decode(&f)
	s := e.Clock.Tick(now, p.BPM)
	if s.Rearmed && p.BPM != e.Last.Params.BPM {
		log.Debug().Int("bpm", p.BPM).Dur("half_beat", beat.HalfBeat(p.BPM)).Msg("beat re-armed")
	}

	e.Seg.Render(e.Out, p, s.Level)

	var err error
	if e.Drv != nil {
		err = e.Drv.Write(e.Out)
	}
	e.Seg.Advance(p)

	e.Last.Params = p
	e.Last.Beat = s
	e.Last.Frames++
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	return err
}

// Run ticks until ctx is cancelled. Driver errors are logged and the loop
// carries on with the next tick.
func (e *Engine) Run(ctx context.Context) error {
	tick := time.NewTicker(e.Period)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if err := e.RenderOnce(e.Now()); err != nil {
				e.warn.Error().Err(err).Msg("driver write failed")
			}
		}
	}
}

// Blank writes an all-off frame.
func (e *Engine) Blank() error {
	if e.Drv == nil {
		return nil
	}
	return e.Drv.Write(make([]byte, len(e.Out)))
}
