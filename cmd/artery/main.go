package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-artery/internal/beat"
	"github.com/coreman2200/funtimes-artery/internal/config"
	"github.com/coreman2200/funtimes-artery/internal/e131"
	"github.com/coreman2200/funtimes-artery/internal/led"
	"github.com/coreman2200/funtimes-artery/internal/preview"
	"github.com/coreman2200/funtimes-artery/internal/render"
	"github.com/coreman2200/funtimes-artery/internal/store"
)

func main() {
	def := config.Default()

	// ---- Flags (remain usable; config.yaml overrides them when present) ----
	var (
		count      = flag.Int("leds", def.LEDCount, "number of LEDs on the strip")
		address    = flag.Int("address", def.Address, "first DMX channel of the fixture (1-based)")
		tickMS     = flag.Int("tick-ms", def.TickMS, "render period in milliseconds")
		driver     = flag.String("driver", def.Driver, "driver: spi | sim | preview")
		colorOrder = flag.String("color", def.ColorOrder, "LED color order (e.g. GRB, RGB)")
		group      = flag.String("group", def.Network.Group, "E1.31 multicast group")
		port       = flag.Int("port", def.Network.Port, "E1.31 UDP port")
		iface      = flag.String("iface", "", "network interface for the multicast join")
		spiDev     = flag.String("spi-dev", "", "SPI port name (empty picks the first)")
		previewOn  = flag.String("preview", "", "preview/health listen address, e.g. :8080")
		logLevel   = flag.String("log-level", def.LogLevel, "trace | debug | info | warn | error")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Effective config ----
	cfg := def
	cfg.LEDCount, cfg.Address, cfg.TickMS = *count, *address, *tickMS
	cfg.Driver, cfg.ColorOrder, cfg.LogLevel = *driver, *colorOrder, *logLevel
	cfg.Network = config.Network{Group: *group, Port: *port, Interface: *iface}
	cfg.SPI.Dev = *spiDev
	cfg.Preview.Addr = *previewOn
	if err := config.Overlay(*configPath, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	order, _ := led.ParseOrder(cfg.ColorOrder)
	dec, _ := beat.NewDecoder(cfg.Address, beat.DefaultChannelMap)

	// ---- Parameter store, seeded so the strip pulses before any controller shows up ----
	st := store.New()
	seed := &e131.Frame{}
	if err := dec.Encode(seed, cfg.Defaults); err != nil {
		log.Fatal().Err(err).Msg("seed default channels")
	}
	st.PublishFrame(seed)

	rx := e131.NewReceiver(st)

	// ---- Driver selection ----
	var hub *preview.Hub
	if cfg.Preview.Addr != "" {
		hub = preview.NewHub(cfg.LEDCount)
		hub.Health = func() map[string]any {
			return map[string]any{"receiver": rx.Stats(), "generation": st.Generation()}
		}
	}

	var drv led.Driver
	switch cfg.Driver {
	case "spi":
		if _, err := host.Init(); err != nil {
			log.Fatal().Err(err).Msg("periph host init")
		}
		d, err := led.OpenNRZ(cfg.SPI.Dev, cfg.LEDCount, order)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("dev", cfg.SPI.Dev).
				Msg("SPI init failed; falling back to SIM")
			drv = led.NewSim(cfg.LEDCount)
		} else {
			drv = d
		}
	case "preview":
		drv = hub
	default:
		drv = led.NewSim(cfg.LEDCount)
	}
	if hub != nil && cfg.Driver != "preview" {
		drv = led.Multi{drv, hub}
	}

	eng, err := render.NewEngine(cfg.LEDCount, st, dec, drv, time.Duration(cfg.TickMS)*time.Millisecond)
	if err != nil {
		log.Fatal().Err(err).Msg("render engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Receiver: setup failures stop the receiver only ----
	go func() {
		lc := e131.ListenConfig{Group: cfg.Network.Group, Port: cfg.Network.Port, Interface: cfg.Network.Interface}
		if err := rx.ListenAndServe(ctx, lc); err != nil {
			log.Error().Err(err).Msg("frame receiver stopped; rendering continues with last parameters")
		}
	}()

	// ---- Preview server ----
	var srv *http.Server
	if hub != nil {
		srv = &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      hub.Routes(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("preview server crashed")
			}
		}()
	}

	// ---- Render loop ----
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().
			Int("leds", cfg.LEDCount).
			Int("address", cfg.Address).
			Str("driver", cfg.Driver).
			Str("order", order.String()).
			Dur("period", eng.Period).
			Msg("render loop starting")
		_ = eng.Run(ctx)
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	<-done
	if err := eng.Blank(); err != nil {
		log.Warn().Err(err).Msg("blank strip")
	}
	if srv != nil {
		_ = srv.Close()
	}
	if err := drv.Close(); err != nil {
		log.Warn().Err(err).Msg("close driver")
	}
}
