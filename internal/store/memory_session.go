package store

import (
	"context"
	"sync"
	"time"

	"membership_backend/internal/models"
)

// MemorySessionStore is the in-process map backend for sessions.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.UserSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.UserSession),
	}
}

func (s *MemorySessionStore) Create(_ context.Context, session *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*models.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	// Lazy expiry: an expired session is removed on first read.
	if session.ExpiresAt.Before(time.Now()) {
		delete(s.sessions, sessionID)
		return nil, nil
	}

	session.LastAccessAt = time.Now()
	cp := *session
	return &cp, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, sessionID string) (*models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (s *MemorySessionStore) Update(_ context.Context, sessionID string, upd models.SessionUpdate) (*models.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	applySessionUpdate(session, upd)
	cp := *session
	return &cp, nil
}

func (s *MemorySessionStore) Deactivate(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	session.IsActive = false
	return true, nil
}

func (s *MemorySessionStore) GetByTransaction(_ context.Context, transactionID string) (*models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.TransactionID == transactionID && session.IsActive {
			cp := *session
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemorySessionStore) GetActiveSessions(_ context.Context) ([]models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var out []models.UserSession
	for _, session := range s.sessions {
		if session.IsActive && session.ExpiresAt.After(now) {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (s *MemorySessionStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			cleaned++
		}
	}
	return cleaned, nil
}

func (s *MemorySessionStore) Extend(_ context.Context, sessionID string, days int) (*models.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	session.ExpiresAt = time.Now().AddDate(0, 0, days)
	session.LastAccessAt = time.Now()
	cp := *session
	return &cp, nil
}

func (s *MemorySessionStore) Stats(_ context.Context) (models.SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := models.SessionStats{ByPlan: make(map[string]int)}
	for _, session := range s.sessions {
		stats.Total++
		if session.ExpiresAt.Before(now) {
			stats.Expired++
			continue
		}
		if session.IsActive {
			stats.Active++
			stats.ByPlan[session.PlanID]++
		}
	}
	return stats, nil
}

// applySessionUpdate merges the partial update and touches lastAccessAt,
// matching the combined read-with-mutation contract of Update.
func applySessionUpdate(session *models.UserSession, upd models.SessionUpdate) {
	if upd.ExpiresAt != nil {
		session.ExpiresAt = *upd.ExpiresAt
	}
	if upd.IsActive != nil {
		session.IsActive = *upd.IsActive
	}
	session.LastAccessAt = time.Now()
}
