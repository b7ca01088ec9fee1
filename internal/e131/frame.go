package e131

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// FrameSize is the only datagram length the receiver accepts.
	FrameSize = 638

	// DefaultPort is the ACN SDT multicast port.
	DefaultPort = 5568
	// DefaultGroup is the local-scope multicast group the strip listens on.
	DefaultGroup = "239.255.0.1"

	// PropertyOffset is where the DMP property values start. Property value 0
	// carries the DMX start code; channel n lives at PropertyOffset+n.
	PropertyOffset = 125
	// Channels is the number of addressable DMX channels in one frame.
	Channels = 512
)

var ErrFrameSize = errors.New("e131: wrong frame size")

// Frame is one full control packet as received off the wire.
type Frame [FrameSize]byte

// Channel returns DMX channel n (1..512). Out of range reads return 0.
func (f *Frame) Channel(n int) byte {
	if n < 0 || n > Channels {
		return 0
	}
	return f[PropertyOffset+n]
}

// SetChannel writes DMX channel n (1..512).
func (f *Frame) SetChannel(n int, v byte) error {
	if n < 1 || n > Channels {
		return fmt.Errorf("e131: channel %d out of range 1..%d", n, Channels)
	}
	f[PropertyOffset+n] = v
	return nil
}

// Parse copies a datagram into a Frame. Only the total length is validated.
func Parse(b []byte) (*Frame, error) {
	if len(b) != FrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(b), FrameSize)
	}
	var f Frame
	if n := copy(f[:], b); n != FrameSize {
		return nil, fmt.Errorf("e131: short copy %d of %d bytes", n, FrameSize)
	}
	return &f, nil
}

var acnIdentifier = [12]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7'}

// NewFrame builds an empty data packet with the root, framing and DMP layer
// headers filled in, so frames we transmit look like ordinary sACN traffic.
func NewFrame(universe uint16, source string, cid [16]byte) *Frame {
	var f Frame
	be := binary.BigEndian

	// root layer
	be.PutUint16(f[0:], 0x0010)
	copy(f[4:16], acnIdentifier[:])
	be.PutUint16(f[16:], 0x7000|uint16(FrameSize-16))
	be.PutUint32(f[18:], 0x00000004)
	copy(f[22:38], cid[:])

	// framing layer
	be.PutUint16(f[38:], 0x7000|uint16(FrameSize-38))
	be.PutUint32(f[40:], 0x00000002)
	copy(f[44:107], source) // NUL terminated, 64 bytes max
	f[108] = 100            // priority
	be.PutUint16(f[113:], universe)

	// DMP layer
	be.PutUint16(f[115:], 0x7000|uint16(FrameSize-115))
	f[117] = 0x02
	f[118] = 0xa1
	be.PutUint16(f[121:], 0x0001)
	be.PutUint16(f[123:], Channels+1)
	return &f
}

// SetSequence stamps the framing-layer sequence number.
func (f *Frame) SetSequence(seq byte) { f[111] = seq }

// Universe reports the framing-layer universe.
func (f *Frame) Universe() uint16 { return binary.BigEndian.Uint16(f[113:]) }
