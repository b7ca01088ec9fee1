// e131send transmits pulse parameters to the strip without a lighting
// console. Frames are repeated at -rate so late joiners pick them up.
package main

import (
	"crypto/rand"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-artery/internal/beat"
	"github.com/coreman2200/funtimes-artery/internal/e131"
)

func main() {
	d := beat.DefaultValues
	var (
		group    = flag.String("group", e131.DefaultGroup, "multicast group")
		port     = flag.Int("port", e131.DefaultPort, "UDP port")
		universe = flag.Uint("universe", 1, "E1.31 universe")
		address  = flag.Int("address", 1, "first DMX channel of the fixture")
		width    = flag.Uint("width", uint(d.Width), "lit pixels per segment (0-255)")
		gap      = flag.Uint("gap", uint(d.Gap), "dark pixels per segment (0-255)")
		bpm      = flag.Uint("bpm", uint(d.BPM), "beats per minute (0-255)")
		flow     = flag.Int("flow", int(d.Flow), "scroll speed, hundredths of a pixel per tick (-128..127)")
		hue      = flag.Uint("hue", uint(d.Hue), "hue (0-255)")
		lightMin = flag.Uint("light-min", uint(d.LightMin), "minimum light, relative to light-max (0-255)")
		lightMax = flag.Uint("light-max", uint(d.LightMax), "maximum light (0-255)")
		hueStep  = flag.Int("hue-step", 0, "advance hue by this much every frame")
		rate     = flag.Float64("rate", 2, "frames per second")
		count    = flag.Int("count", 0, "frames to send (0 = until interrupted)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	dec, err := beat.NewDecoder(*address, beat.DefaultChannelMap)
	if err != nil {
		log.Fatal().Err(err).Msg("bad address")
	}
	v := beat.Values{
		Width:    byteFlag("width", *width),
		Gap:      byteFlag("gap", *gap),
		BPM:      byteFlag("bpm", *bpm),
		Hue:      byteFlag("hue", *hue),
		LightMin: byteFlag("light-min", *lightMin),
		LightMax: byteFlag("light-max", *lightMax),
	}
	if *flow < -128 || *flow > 127 {
		log.Fatal().Int("flow", *flow).Msg("flow out of range")
	}
	v.Flow = int8(*flow)
	if *rate <= 0 {
		log.Fatal().Float64("rate", *rate).Msg("rate must be positive")
	}

	var cid [16]byte
	_, _ = rand.Read(cid[:])

	s, err := e131.DialSender(*group, *port)
	if err != nil {
		log.Fatal().Err(err).Msg("dial")
	}
	defer s.Close()

	p := v.Params()
	log.Info().
		Str("group", *group).
		Int("address", *address).
		Int("width", p.Width).Int("gap", p.Gap).Int("bpm", p.BPM).Int("flow", p.Flow).
		Float64("hue", p.Hue).Float64("light_min", p.LightMin).Float64("light_max", p.LightMax).
		Msg("sending")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	tick := time.NewTicker(time.Duration(float64(time.Second) / *rate))
	defer tick.Stop()

	for sent := 0; *count == 0 || sent < *count; sent++ {
		f := e131.NewFrame(uint16(*universe), "e131send", cid)
		if err := dec.Encode(f, v); err != nil {
			log.Fatal().Err(err).Msg("encode")
		}
		if err := s.Send(f); err != nil {
			log.Error().Err(err).Msg("send")
		}
		v.Hue += uint8(*hueStep)

		select {
		case <-sig:
			log.Info().Int("sent", sent+1).Msg("stopped")
			return
		case <-tick.C:
		}
	}
}

func byteFlag(name string, v uint) uint8 {
	if v > 255 {
		log.Fatal().Uint("value", v).Msgf("-%s out of range 0-255", name)
	}
	return uint8(v)
}
