package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/session"
)

func dialStream(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// reads snapshots until one satisfies match
func readUntil(t *testing.T, conn *websocket.Conn, match func(sessionResponse) bool) sessionResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var resp sessionResponse
		require.NoError(t, conn.ReadJSON(&resp))
		if match(resp) {
			return resp
		}
	}
}

func newStreamServer(t *testing.T) (*Server, *playback.ManualClock, *httptest.Server) {
	t.Helper()
	clock := playback.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	srv := NewServer(
		session.NewRegistry(session.WithRegistryClock(clock)),
		WithTick(10*time.Millisecond),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, clock, ts
}

func TestStream_PushesSnapshotsAndAppliesControls(t *testing.T) {
	srv, clock, ts := newStreamServer(t)
	created := createSession(t, srv)
	conn := dialStream(t, ts, created.ID)

	first := readUntil(t, conn, func(sessionResponse) bool { return true })
	require.Equal(t, created.ID, first.ID)
	require.Equal(t, playback.StatePaused, first.Snapshot.State)

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "play"}))
	readUntil(t, conn, func(r sessionResponse) bool { return r.Snapshot.State == playback.StatePlaying })

	clock.Advance(1500 * time.Millisecond)
	got := readUntil(t, conn, func(r sessionResponse) bool { return r.Snapshot.ElapsedMs == 1500 })
	require.Equal(t, 0, got.Snapshot.ActiveCueIndex)

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "seek", "ms": 3000}))
	got = readUntil(t, conn, func(r sessionResponse) bool { return r.Snapshot.ElapsedMs == 3000 })
	require.Equal(t, 1, got.Snapshot.ActiveCueIndex)

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "pause"}))
	readUntil(t, conn, func(r sessionResponse) bool { return r.Snapshot.State == playback.StatePaused })
}

func TestStream_RejectsUnknownOp(t *testing.T) {
	srv, _, ts := newStreamServer(t)
	created := createSession(t, srv)
	conn := dialStream(t, ts, created.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{"op": "rewind"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if errMsg, ok := msg["error"]; ok {
			require.Equal(t, `unknown op "rewind"`, errMsg)
			return
		}
	}
}

func TestStream_ClosesWhenSessionDeleted(t *testing.T) {
	srv, _, ts := newStreamServer(t)
	created := createSession(t, srv)
	conn := dialStream(t, ts, created.ID)

	srv.registry.Delete(created.ID)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
			return
		}
	}
}

func TestApplyControl(t *testing.T) {
	engine := playback.NewEngine(playback.WithClock(playback.NewManualClock(time.Now())))

	require.ErrorIs(t, applyControl(engine, controlMessage{Op: "seek"}), errMissingMs)
	require.Error(t, applyControl(engine, controlMessage{Op: "stop"}))
	require.NoError(t, applyControl(engine, controlMessage{Op: "play"}))
}
