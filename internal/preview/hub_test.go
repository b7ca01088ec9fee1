package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-artery/internal/led"
)

func TestHealth(t *testing.T) {
	h := NewHub(3)
	h.Health = func() map[string]any { return map[string]any{"accepted": 5} }
	require.NoError(t, h.Write(make([]byte, 9)))

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(1), got["frame_id"])
	assert.Equal(t, float64(3), got["count"])
	assert.Equal(t, float64(5), got["accepted"])
}

func TestFramesWS(t *testing.T) {
	h := NewHub(2)
	h.Throttle = 0
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	// wait for the hub to register the client
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, h.Write([]byte{1, 2, 3, 4, 5, 6}))

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := c.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, f.RGB)
	assert.Equal(t, uint64(1), f.FrameID)

	require.NoError(t, h.Close())
}

func TestWriteLength(t *testing.T) {
	h := NewHub(2)
	assert.ErrorIs(t, h.Write(make([]byte, 3)), led.ErrLength)
	assert.NoError(t, h.Write(make([]byte, 6)))
	assert.Equal(t, uint64(1), h.frameID, "rejected frames are not counted")
}
