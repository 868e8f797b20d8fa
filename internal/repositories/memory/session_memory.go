// Package memory keeps repositories in process memory. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/quiz"
	"github.com/SAP-F-2025/screening-service/internal/repositories"
)

type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionMemory() repositories.SessionRepository {
	return &SessionMemory{sessions: make(map[string]*quiz.Session)}
}

func (r *SessionMemory) Create(ctx context.Context, s *quiz.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return repositories.ErrAlreadyExists
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *SessionMemory) GetByID(ctx context.Context, id string) (*quiz.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (r *SessionMemory) Delete(ctx context.Context, id string) (*quiz.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.sessions, id)
	return s, nil
}

func (r *SessionMemory) DeleteIdleBefore(ctx context.Context, cutoff time.Time) ([]*quiz.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*quiz.Session
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			removed = append(removed, s)
			delete(r.sessions, id)
		}
	}
	return removed, nil
}

func (r *SessionMemory) DeleteAll(ctx context.Context) ([]*quiz.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]*quiz.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		removed = append(removed, s)
	}
	r.sessions = make(map[string]*quiz.Session)
	return removed, nil
}

func (r *SessionMemory) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
