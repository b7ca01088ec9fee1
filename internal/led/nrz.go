package led

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// SPIFreq is the only bus rate nrzled accepts. It encodes the 800 kHz LED
// timing into that bit stream itself.
const SPIFreq = 2500 * physic.KiloHertz

// NRZ drives WS281x strips over SPI with periph's nrzled encoder.
type NRZ struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	port   io.Closer
	count  int
	order  Order
	buf    []byte
	closed bool
}

// OpenNRZ opens the SPI port by name ("" picks the first one registered).
// periph's host.Init must have run.
func OpenNRZ(name string, count int, order Order) (*NRZ, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", name, err)
	}
	n, err := NewNRZ(p, p, count, order)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return n, nil
}

// NewNRZ wraps an already opened port. closer may be nil.
func NewNRZ(p spi.Port, closer io.Closer, count int, order Order) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: SPIFreq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{
		dev:   d,
		port:  closer,
		count: count,
		order: order,
		buf:   make([]byte, count*3),
	}, nil
}

// Write takes len(rgb)==3*count.
func (n *NRZ) Write(rgb []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}
	if len(rgb) != n.count*3 {
		return fmt.Errorf("%w: got %d bytes for %d pixels", ErrLength, len(rgb), n.count)
	}
	n.order.Apply(n.buf, rgb)
	// nrzled sends its input in GRB order; swap the first two bytes so the
	// wire carries the configured order.
	for i := 0; i < len(n.buf); i += 3 {
		n.buf[i], n.buf[i+1] = n.buf[i+1], n.buf[i]
	}
	if _, err := n.dev.Write(n.buf); err != nil {
		return fmt.Errorf("nrzled write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	err := n.dev.Halt()
	if n.port != nil {
		if cerr := n.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
