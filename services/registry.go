package services

import (
	"sync"
	"time"
)

// SessionRegistry holds one Orchestrator per session in memory. Sessions
// idle longer than ttl are dropped on the next lookup.
type SessionRegistry struct {
	mu       sync.Mutex
	deps     Dependencies
	ttl      time.Duration
	sessions map[string]*Orchestrator
}

func NewSessionRegistry(deps Dependencies, ttl time.Duration) *SessionRegistry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &SessionRegistry{
		deps:     deps,
		ttl:      ttl,
		sessions: make(map[string]*Orchestrator),
	}
}

func (r *SessionRegistry) Dependencies() Dependencies {
	return r.deps
}

func (r *SessionRegistry) Get(sessionID string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune()
	o, ok := r.sessions[sessionID]
	if !ok {
		o = NewOrchestrator(sessionID, r.deps)
		r.sessions[sessionID] = o
	}
	return o
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) prune() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.deps.Now().Add(-r.ttl)
	for id, o := range r.sessions {
		if o.idleSince().Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}
