package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client to server transport command
type controlMessage struct {
	Op string `json:"op"`
	Ms *int64 `json:"ms,omitempty"`
}

var errMissingMs = errors.New("missing ms")

func applyControl(engine *playback.Engine, msg controlMessage) error {
	switch msg.Op {
	case "play":
		engine.Play()
	case "pause":
		engine.Pause()
	case "seek":
		if msg.Ms == nil {
			return errMissingMs
		}
		engine.Seek(*msg.Ms)
	default:
		return fmt.Errorf("unknown op %q", msg.Op)
	}
	return nil
}

// pushes a session snapshot every tick and applies control messages as
// they arrive; each applied command is answered with a fresh snapshot
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "session", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteJSON(v)
	}
	sendSnapshot := func() error {
		return write(toSessionResponse(sess))
	}

	s.logger.Debugw("WebSocket connected", "session", sess.ID)
	defer s.logger.Debugw("WebSocket disconnected", "session", sess.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}

			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = write(map[string]any{"error": "invalid json message"})
				continue
			}
			if err := applyControl(sess.Engine(), msg); err != nil {
				_ = write(map[string]any{"error": err.Error()})
				continue
			}
			if err := sendSnapshot(); err != nil {
				return
			}
		}
	}()

	if err := sendSnapshot(); err != nil {
		return
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, ok := s.registry.Get(sess.ID); !ok {
				writeMu.Lock()
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session deleted"))
				writeMu.Unlock()
				return
			}
			if err := sendSnapshot(); err != nil {
				return
			}
		}
	}
}
