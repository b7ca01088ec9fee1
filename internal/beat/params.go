// Package beat turns DMX channel values into pulse parameters and tracks the
// beat phase those parameters ask for.
package beat

import (
	"fmt"

	"github.com/coreman2200/funtimes-artery/internal/e131"
)

// ChannelMap gives the offset of each parameter from the base address.
type ChannelMap struct {
	Width    int
	Gap      int
	BPM      int
	Flow     int
	Hue      int
	LightMin int
	LightMax int
}

// DefaultChannelMap is the fixture layout controllers are patched against.
var DefaultChannelMap = ChannelMap{
	Width:    0,
	Gap:      1,
	BPM:      2,
	Flow:     3,
	Hue:      4,
	LightMin: 5,
	LightMax: 6,
}

// Footprint is the number of channels the fixture occupies.
func (m ChannelMap) Footprint() int {
	hi := 0
	for _, o := range []int{m.Width, m.Gap, m.BPM, m.Flow, m.Hue, m.LightMin, m.LightMax} {
		if o > hi {
			hi = o
		}
	}
	return hi + 1
}

// Values are the raw channel bytes for one fixture.
type Values struct {
	Width    uint8 `yaml:"width"`
	Gap      uint8 `yaml:"gap"`
	BPM      uint8 `yaml:"bpm"`
	Flow     int8  `yaml:"flow"`
	Hue      uint8 `yaml:"hue"`
	LightMin uint8 `yaml:"light_min"`
	LightMax uint8 `yaml:"light_max"`
}

// DefaultValues is what the strip shows before any controller transmits.
var DefaultValues = Values{
	Width:    4,
	Gap:      10,
	BPM:      128,
	Flow:     30,
	Hue:      0,
	LightMin: 10,
	LightMax: 10,
}

// Params is one tick's worth of decoded, clamped pulse configuration.
type Params struct {
	Width    int     // lit pixels per segment, >= 1
	Gap      int     // dark pixels per segment, >= 1
	BPM      int     // >= 1
	Flow     int     // scroll speed, hundredths of a pixel per tick; sign is direction
	Hue      float64 // 0..1
	LightMin float64 // 0..LightMax
	LightMax float64 // 0..1
}

// Segment is the length of one repeating lit+dark unit.
func (p Params) Segment() int { return p.Width + p.Gap }

// Decoder reads Params from a frame at a fixed base address.
type Decoder struct {
	Address int
	Map     ChannelMap
}

// NewDecoder validates that the whole fixture fits into one universe.
func NewDecoder(address int, m ChannelMap) (Decoder, error) {
	if address < 1 || address+m.Footprint()-1 > e131.Channels {
		return Decoder{}, fmt.Errorf("beat: address %d does not fit %d channels in a universe", address, m.Footprint())
	}
	return Decoder{Address: address, Map: m}, nil
}

func (d Decoder) ch(f *e131.Frame, off int) byte { return f.Channel(d.Address + off) }

// Read returns the raw channel values without scaling or clamping.
func (d Decoder) Read(f *e131.Frame) Values {
	return Values{
		Width:    d.ch(f, d.Map.Width),
		Gap:      d.ch(f, d.Map.Gap),
		BPM:      d.ch(f, d.Map.BPM),
		Flow:     int8(d.ch(f, d.Map.Flow)),
		Hue:      d.ch(f, d.Map.Hue),
		LightMin: d.ch(f, d.Map.LightMin),
		LightMax: d.ch(f, d.Map.LightMax),
	}
}

// Decode maps the fixture's channels into Params. Width, gap and bpm are
// raised to 1 so nothing downstream divides by zero.
func (d Decoder) Decode(f *e131.Frame) Params {
	return d.Read(f).Params()
}

// Params scales and clamps raw values.
func (v Values) Params() Params {
	p := Params{
		Width: atLeastOne(v.Width),
		Gap:   atLeastOne(v.Gap),
		BPM:   atLeastOne(v.BPM),
		Flow:  int(v.Flow),
		Hue:   float64(v.Hue) / 255,
	}
	p.LightMax = float64(v.LightMax) / 255
	p.LightMin = float64(v.LightMin) / 255 * p.LightMax
	return p
}

// Encode writes v into f at the decoder's address.
func (d Decoder) Encode(f *e131.Frame, v Values) error {
	for _, c := range []struct {
		off int
		val byte
	}{
		{d.Map.Width, v.Width},
		{d.Map.Gap, v.Gap},
		{d.Map.BPM, v.BPM},
		{d.Map.Flow, byte(v.Flow)},
		{d.Map.Hue, v.Hue},
		{d.Map.LightMin, v.LightMin},
		{d.Map.LightMax, v.LightMax},
	} {
		if err := f.SetChannel(d.Address+c.off, c.val); err != nil {
			return err
		}
	}
	return nil
}

func atLeastOne(b uint8) int {
	if b < 1 {
		return 1
	}
	return int(b)
}
