package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/playback"
)

// independent sessions keyed by id; each owns its own engine
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	clock  playback.Clock
	logger *logging.Logger
}

type RegistryOption func(*Registry)

func WithRegistryClock(clock playback.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = clock
	}
}

func WithRegistryLogger(logger *logging.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		clock:    playback.SystemClock{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Create() *Session {
	id := uuid.NewString()
	s := New(
		playback.NewEngine(playback.WithClock(r.clock)),
		WithID(id),
		WithLogger(r.logger.With("session", id)),
	)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// sessions ordered by creation time
func (r *Registry) List() []*Session {
	r.mu.RLock()
	list := lo.Values(r.sessions)
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
