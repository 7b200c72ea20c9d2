package handler

import (
	"sync"
	"time"

	"github.com/pavelanni/tutor/internal/quiz"
)

const defaultSessionIdle = 24 * time.Hour

type registryEntry struct {
	sess     *quiz.Session
	lastSeen time.Time
}

// Registry maps browser session IDs to tutor sessions.
// Sessions idle longer than the idle limit are dropped.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(idle time.Duration) *Registry {
	if idle <= 0 {
		idle = defaultSessionIdle
	}
	return &Registry{
		sessions: make(map[string]*registryEntry),
		idle:     idle,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *quiz.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	e, ok := r.sessions[id]
	if !ok {
		s := quiz.NewSession()
		s.ID = id
		e = &registryEntry{sess: s}
		r.sessions[id] = e
	}
	e.lastSeen = now
	return e.sess
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) prune(now time.Time) {
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.idle {
			delete(r.sessions, id)
		}
	}
}
