package live

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ca-modeler/internal/session"
)

func startServer(t *testing.T) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.Width, cfg.Height = 6, 4
	cfg.Seed = 5
	cfg.Interval = 20 * time.Millisecond
	sess, err := session.New(cfg)
	require.NoError(t, err)

	srv := NewServer(sess, nil)
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = srv.Run(ctx)
	}()
	ts := httptest.NewServer(srv.Mux())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-runDone
		ts.Close()
	})
	return ts, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var f Frame
		require.NoError(t, json.Unmarshal(msg, &f))
		if f.Type == TypeFrame {
			return f
		}
	}
}

func readError(t *testing.T, conn *websocket.Conn) ErrorMsg {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var e ErrorMsg
		require.NoError(t, json.Unmarshal(msg, &e))
		if e.Type == TypeError {
			return e
		}
	}
}

func TestInitialFrame(t *testing.T) {
	_, conn := startServer(t)
	f := readFrame(t, conn)
	assert.Equal(t, "life", f.Model)
	assert.Equal(t, 6, f.Width)
	assert.Equal(t, 4, f.Height)
	assert.Len(t, f.Cells, 24)
	assert.Equal(t, 0, f.Generation)
	assert.False(t, f.Running)
	require.Len(t, f.States, 2)
	assert.Equal(t, "#00ff00", f.States[1].Color)
	assert.Equal(t, 24, f.States[0].Cells+f.States[1].Cells)
}

func TestStepCommand(t *testing.T) {
	_, conn := startServer(t)
	readFrame(t, conn)
	require.NoError(t, conn.WriteJSON(Command{Type: TypeStep}))
	f := readFrame(t, conn)
	assert.Equal(t, 1, f.Generation)
}

func TestPaintCommand(t *testing.T) {
	_, conn := startServer(t)
	readFrame(t, conn)
	alive := uint8(1)
	require.NoError(t, conn.WriteJSON(Command{Type: TypePaint, Row: 2, Col: 3, State: &alive}))
	f := readFrame(t, conn)
	assert.Equal(t, 1, f.Cells[2*6+3])
	assert.Equal(t, alive, f.Paint)

	require.NoError(t, conn.WriteJSON(Command{Type: TypePaint, Row: 9, Col: 9}))
	e := readError(t, conn)
	assert.Contains(t, e.Message, "out of bounds")
}

func TestRejectedCommands(t *testing.T) {
	_, conn := startServer(t)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(Command{Type: "EXPLODE"}))
	assert.Contains(t, readError(t, conn).Message, "unknown command")

	bad := uint8(200)
	require.NoError(t, conn.WriteJSON(Command{Type: TypeSelect, State: &bad}))
	assert.Contains(t, readError(t, conn).Message, "unknown state")

	require.NoError(t, conn.WriteJSON(Command{Type: TypeNbhd, Name: "hex"}))
	readError(t, conn)
}

func TestNeighborhoodAndSpeed(t *testing.T) {
	_, conn := startServer(t)
	readFrame(t, conn)
	require.NoError(t, conn.WriteJSON(Command{Type: TypeNbhd, Name: "ExtendedMoore"}))
	assert.Equal(t, "ExtendedMoore", readFrame(t, conn).Neighborhood)
	require.NoError(t, conn.WriteJSON(Command{Type: TypeSpeed, Speed: 100}))
	assert.Equal(t, int64(10), readFrame(t, conn).IntervalMS)
}

func TestRunningBroadcastsGenerations(t *testing.T) {
	_, conn := startServer(t)
	readFrame(t, conn)
	require.NoError(t, conn.WriteJSON(Command{Type: TypeToggle}))
	f := readFrame(t, conn)
	assert.True(t, f.Running)
	for f.Generation < 2 {
		f = readFrame(t, conn)
	}
	assert.True(t, f.Running)
}

func TestIndexPage(t *testing.T) {
	ts, _ := startServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/ws")

	resp2, err := http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
