package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/session"
	"github.com/mgpai22/subclock/internal/subtitle"
)

type parseResponse struct {
	Success   bool           `json:"success"`
	Subtitles []subtitle.Cue `json:"subtitles"`
	Errors    []string       `json:"errors"`
}

type sessionResponse struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"`
	Snapshot  playback.Snapshot `json:"snapshot"`
	ActiveCue *subtitle.Cue     `json:"activeCue"`
}

type seekRequest struct {
	Ms *int64 `json:"ms"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, header, err := s.openUpload(w, r)
	if err != nil {
		writeParseFailure(w, err)
		return
	}
	defer file.Close()

	cues, err := subtitle.ParseReader(file)
	if err != nil {
		s.logger.Debugw("Parse request failed", "file", header.Filename, "error", err)
		writeParseFailure(w, err)
		return
	}

	s.logger.Debugw("Parsed upload", "file", header.Filename, "cues", len(cues))
	writeJSON(w, http.StatusOK, parseResponse{
		Success:   true,
		Subtitles: cues,
		Errors:    []string{},
	})
}

func writeParseFailure(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), parseResponse{
		Success:   false,
		Subtitles: []subtitle.Cue{},
		Errors:    subtitle.Diagnostics(err),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list := lo.Map(s.registry.List(), func(sess *session.Session, _ int) sessionResponse {
			return toSessionResponse(sess)
		})
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.openUpload(w, r)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	sess := s.registry.Create()
	ticket, _ := sess.Begin(r.Context())
	text, readErr := readUpload(file)
	if _, err := sess.Complete(ticket, header.Filename, text, readErr); err != nil {
		s.registry.Delete(sess.ID)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.logger.Infow("Session created", "session", sess.ID, "file", header.Filename)
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// dispatches /api/sessions/{id}[/action]
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	sess, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	switch action {
	case "":
		s.handleSessionResource(w, r, sess)
	case "cues":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, sess.Engine().Cues())
	case "play", "pause", "seek":
		s.handleTransport(w, r, sess, action)
	case "ws":
		s.handleStream(w, r, sess)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleSessionResource(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	case http.MethodDelete:
		s.registry.Delete(sess.ID)
		s.logger.Infow("Session deleted", "session", sess.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTransport(w http.ResponseWriter, r *http.Request, sess *session.Session, action string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	engine := sess.Engine()
	switch action {
	case "play":
		engine.Play()
	case "pause":
		engine.Pause()
	case "seek":
		var req seekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Ms == nil {
			writeError(w, http.StatusBadRequest, "missing ms")
			return
		}
		engine.Seek(*req.Ms)
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func toSessionResponse(sess *session.Session) sessionResponse {
	engine := sess.Engine()
	snap := engine.Tick()
	resp := sessionResponse{
		ID:       sess.ID,
		Source:   sess.Source(),
		Snapshot: snap,
	}
	if cue, ok := activeCue(engine, snap); ok {
		resp.ActiveCue = &cue
	}
	return resp
}

func activeCue(engine *playback.Engine, snap playback.Snapshot) (subtitle.Cue, bool) {
	if snap.ActiveCueIndex < 0 {
		return subtitle.Cue{}, false
	}
	cues := engine.Cues()
	if snap.ActiveCueIndex >= len(cues) {
		return subtitle.Cue{}, false
	}
	return cues[snap.ActiveCueIndex], true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
