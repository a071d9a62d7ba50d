// Package session ties document loading to a playback engine.
//
// Loads are cancelable by replacement: beginning a new load cancels the
// previous one and any result that arrives for a superseded load is dropped,
// so the engine only reflects the most recently started load that completed.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/subtitle"
)

var ErrSuperseded = errors.New("load superseded by a newer load")

// identifies one load attempt
type Ticket uint64

type LoadResult struct {
	Source string
	// false when the document was blank and there is nothing to play
	Loaded  bool
	Cues    int
	Skipped int
}

type Session struct {
	ID        string
	CreatedAt time.Time

	engine *playback.Engine
	logger *logging.Logger

	mu     sync.Mutex
	gen    Ticket
	cancel context.CancelFunc
	source string
}

type Option func(*Session)

func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithID(id string) Option {
	return func(s *Session) {
		s.ID = id
	}
}

func New(engine *playback.Engine, opts ...Option) *Session {
	s := &Session{
		CreatedAt: time.Now(),
		engine:    engine,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Engine() *playback.Engine {
	return s.engine
}

// name of the document currently loaded, empty before the first load
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Begin starts a load attempt and cancels the one in flight, if any.
// The returned context is done once the attempt is superseded.
func (s *Session) Begin(ctx context.Context) (Ticket, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.gen++
	s.cancel = cancel
	return s.gen, loadCtx
}

// Complete hands the text read for ticket t to the parser and, on success,
// reloads the engine. Read failures and unparsable documents leave the engine
// in its prior state.
func (s *Session) Complete(t Ticket, source, text string, readErr error) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.gen {
		s.logger.Debugw("Discarding superseded load", "source", source, "ticket", t, "current", s.gen)
		return LoadResult{Source: source}, ErrSuperseded
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if readErr != nil {
		s.logger.Warnw("Load failed", "source", source, "error", readErr)
		return LoadResult{Source: source}, subtitle.NewUpstreamError(readErr)
	}

	report := subtitle.ParseReport(text)
	for _, skipped := range report.Skipped {
		s.logger.Debugw("Skipping subtitle block",
			"source", source,
			"block", skipped.Index,
			"reason", skipped.Reason,
		)
	}

	cues, err := report.Result()
	if err != nil {
		s.logger.Warnw("No subtitles parsed", "source", source, "skipped", len(report.Skipped))
		return LoadResult{Source: source, Skipped: len(report.Skipped)}, err
	}

	result := LoadResult{
		Source:  source,
		Cues:    len(cues),
		Skipped: len(report.Skipped),
	}
	if !s.engine.Load(cues) {
		s.source = ""
		s.logger.Infow("Nothing to play", "source", source)
		return result, nil
	}

	s.source = source
	result.Loaded = true
	s.logger.Infow("Subtitles loaded",
		"source", source,
		"cues", len(cues),
		"skipped", len(report.Skipped),
		"duration", subtitle.MsToTimecode(s.engine.TotalDurationMs()),
	)
	return result, nil
}

// LoadText is a synchronous load of text already in memory.
func (s *Session) LoadText(ctx context.Context, source, text string) (LoadResult, error) {
	t, _ := s.Begin(ctx)
	return s.Complete(t, source, text, nil)
}

// LoadFile reads path through r and loads the result.
func (s *Session) LoadFile(ctx context.Context, r *Reader, path string) (LoadResult, error) {
	t, loadCtx := s.Begin(ctx)
	text, err := r.Read(loadCtx, path)
	return s.Complete(t, path, text, err)
}
