package memory

import (
	"sync"

	"trivia-live-service/internal/domain"
	"trivia-live-service/internal/game"
)

// Registry is the in-memory implementation of game.SessionRegistry. One
// mutex guards the code table and the connection reverse index together so
// concurrent create/join/disconnect cannot observe them out of sync.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*game.LiveSession
	conns    map[string]string // connection ID -> code
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*game.LiveSession),
		conns:    make(map[string]string),
	}
}

func (r *Registry) Register(s *game.LiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.Code()]; ok {
		return domain.ErrSessionExists
	}
	r.sessions[s.Code()] = s
	return nil
}

func (r *Registry) Lookup(code string) (*game.LiveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
	for connID, c := range r.conns {
		if c == code {
			delete(r.conns, connID)
		}
	}
}

func (r *Registry) BindConnection(connID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = code
}

func (r *Registry) UnbindConnection(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

func (r *Registry) ResolveConnection(connID string) (*game.LiveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	session, ok := r.sessions[code]
	return session, ok
}
