package led

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

func TestParseOrder(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Order
		ok   bool
	}{
		{"GRB", GRB, true},
		{"rgb", RGB, true},
		{" brg ", Order{'B', 'R', 'G'}, true},
		{"RRB", Order{}, false},
		{"RGBW", Order{}, false},
		{"", Order{}, false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			o, err := ParseOrder(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, o)
		})
	}
}

func TestOrderApply(t *testing.T) {
	rgb := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, len(rgb))
	GRB.Apply(dst, rgb)
	assert.Equal(t, []byte{2, 1, 3, 5, 4, 6}, dst)

	// in place
	Order{'B', 'G', 'R'}.Apply(rgb, rgb)
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, rgb)
}

// failing always errors on Write.
type failing struct{ closed bool }

func (f *failing) Write([]byte) error { return errors.New("nope") }
func (f *failing) Close() error       { f.closed = true; return nil }

func TestMulti(t *testing.T) {
	sim := NewSim(2)
	bad := &failing{}
	m := Multi{sim, bad}
	assert.Error(t, m.Write(make([]byte, 6)))
	assert.Equal(t, uint64(1), sim.Frames(), "healthy drivers still get the frame")
	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
	assert.ErrorIs(t, sim.Write(make([]byte, 6)), ErrClosed)
}

func TestSimLength(t *testing.T) {
	s := NewSim(3)
	assert.ErrorIs(t, s.Write(make([]byte, 6)), ErrLength)
	assert.NoError(t, s.Write(make([]byte, 9)))
	assert.NoError(t, s.Write([]byte{1, 2, 3, 0, 0, 0, 9, 9, 9}))
	assert.Equal(t, uint64(2), s.Frames())
}

func TestSimLogsAtInfo(t *testing.T) {
	var out bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&out).Level(zerolog.InfoLevel)
	defer func() { log.Logger = prev }()

	s := NewSim(2)
	require.NoError(t, s.Write([]byte{9, 0, 0, 0, 0, 0}))
	assert.Contains(t, out.String(), `"level":"info"`)
	assert.Contains(t, out.String(), `"lit":1`)
}

func TestNRZ(t *testing.T) {
	buf := bytes.Buffer{}
	n, err := NewNRZ(spitest.NewRecordRaw(&buf), nil, 2, GRB)
	require.NoError(t, err)

	before := buf.Len()
	require.NoError(t, n.Write([]byte{255, 0, 0, 0, 0, 255}))
	assert.Greater(t, buf.Len(), before, "frame should reach the bus")

	assert.ErrorIs(t, n.Write([]byte{1, 2, 3}), ErrLength)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Write(make([]byte, 6)), ErrClosed)
}

func TestNRZInvalidCount(t *testing.T) {
	_, err := NewNRZ(spitest.NewRecordRaw(&bytes.Buffer{}), nil, 0, GRB)
	assert.Error(t, err)
}

// rawNRZ records what nrzled puts on the bus for pixels written as-is.
func rawNRZ(t *testing.T, pixels []byte) []byte {
	t.Helper()
	buf := bytes.Buffer{}
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &nrzled.Opts{NumPixels: len(pixels) / 3, Channels: 3, Freq: SPIFreq})
	require.NoError(t, err)
	_, err = d.Write(pixels)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestNRZColourOrder(t *testing.T) {
	pixel := []byte{0x11, 0x22, 0x33} // R, G, B
	for _, tc := range []struct {
		order Order
		// bytes handed to nrzled so its G,R,B emission yields the order
		want []byte
	}{
		{GRB, []byte{0x11, 0x22, 0x33}},
		{RGB, []byte{0x22, 0x11, 0x33}},
		{Order{'B', 'R', 'G'}, []byte{0x11, 0x33, 0x22}},
	} {
		t.Run(tc.order.String(), func(t *testing.T) {
			buf := bytes.Buffer{}
			n, err := NewNRZ(spitest.NewRecordRaw(&buf), nil, 1, tc.order)
			require.NoError(t, err)
			require.NoError(t, n.Write(pixel))
			assert.Equal(t, rawNRZ(t, tc.want), buf.Bytes())
		})
	}

	// the swap direction matters: GRB and RGB must differ on the wire
	assert.NotEqual(t, rawNRZ(t, []byte{0x11, 0x22, 0x33}), rawNRZ(t, []byte{0x22, 0x11, 0x33}))
}
