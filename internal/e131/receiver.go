package e131

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/ipv4"
)

// maxDatagram is large enough that any UDP payload arrives untruncated, so an
// oversized packet is still reported with its real length.
const maxDatagram = 1 << 16

// Publisher accepts a validated frame. Implementations must copy b.
type Publisher interface {
	Publish(b []byte) error
}

type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
	Dropped  uint64 `json:"dropped"`
}

// Receiver validates incoming datagrams and hands good ones to a Publisher.
// There is no sequencing or priority handling: each accepted frame replaces
// the previous one.
type Receiver struct {
	pub Publisher

	accepted atomic.Uint64
	rejected atomic.Uint64
	dropped  atomic.Uint64

	warn zerolog.Logger
}

func NewReceiver(pub Publisher) *Receiver {
	return &Receiver{
		pub:  pub,
		warn: log.Sample(&zerolog.BurstSampler{Burst: 5, Period: time.Second}),
	}
}

// Handle processes one datagram. Errors are informational; the caller keeps
// receiving regardless.
func (r *Receiver) Handle(b []byte) error {
	if len(b) != FrameSize {
		r.rejected.Add(1)
		r.warn.Warn().Int("bytes", len(b)).Int("want", FrameSize).Msg("wrong packet size")
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(b), FrameSize)
	}
	if err := r.pub.Publish(b); err != nil {
		r.dropped.Add(1)
		r.warn.Error().Err(err).Msg("couldn't publish frame")
		return err
	}
	r.accepted.Add(1)
	return nil
}

func (r *Receiver) Stats() Stats {
	return Stats{
		Accepted: r.accepted.Load(),
		Rejected: r.rejected.Load(),
		Dropped:  r.dropped.Load(),
	}
}

// Serve reads datagrams from conn until ctx is cancelled or conn is closed.
// conn is closed on return.
func (r *Receiver) Serve(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	buf := make([]byte, maxDatagram)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Error().Err(err).Msg("failed to receive packet")
			continue
		}
		if err := r.Handle(buf[:n]); err != nil {
			log.Debug().Err(err).Stringer("src", src).Msg("frame discarded")
		}
	}
}

type ListenConfig struct {
	Group     string // multicast group, e.g. 239.255.0.1
	Port      int
	Interface string // empty lets the kernel pick
}

// Listen binds the E1.31 port and joins the multicast group. Failures here
// are fatal to the receiver.
func Listen(ctx context.Context, lc ListenConfig) (net.PacketConn, error) {
	if lc.Port == 0 {
		lc.Port = DefaultPort
	}
	if lc.Group == "" {
		lc.Group = DefaultGroup
	}
	group := net.ParseIP(lc.Group)
	if group == nil || !group.IsMulticast() {
		return nil, fmt.Errorf("e131: %q is not a multicast group", lc.Group)
	}

	var ifi *net.Interface
	if lc.Interface != "" {
		i, err := net.InterfaceByName(lc.Interface)
		if err != nil {
			return nil, fmt.Errorf("e131: interface %q: %w", lc.Interface, err)
		}
		ifi = i
	}

	var lcfg net.ListenConfig
	c, err := lcfg.ListenPacket(ctx, "udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(lc.Port)))
	if err != nil {
		return nil, fmt.Errorf("e131: bind: %w", err)
	}
	p := ipv4.NewPacketConn(c)
	if err := p.JoinGroup(ifi, &net.UDPAddr{IP: group}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("e131: join multicast group %s: %w", lc.Group, err)
	}
	log.Info().Str("group", lc.Group).Int("port", lc.Port).Msg("listening for frames")
	return c, nil
}

// ListenAndServe runs Listen then Serve.
func (r *Receiver) ListenAndServe(ctx context.Context, lc ListenConfig) error {
	conn, err := Listen(ctx, lc)
	if err != nil {
		return err
	}
	return r.Serve(ctx, conn)
}
