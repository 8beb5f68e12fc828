package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"membership_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "payment:sess:"

// RedisSessionStore persists sessions in redis.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisSessionStore) Create(ctx context.Context, session *models.UserSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.SessionID), data, 0).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.UserSession, error) {
	session, err := s.Lookup(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	session.LastAccessAt = time.Now()
	if err := s.write(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (*models.UserSession, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session models.UserSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, sessionID string, upd models.SessionUpdate) (*models.UserSession, error) {
	session, err := s.Lookup(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}

	applySessionUpdate(session, upd)
	if err := s.write(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *RedisSessionStore) Deactivate(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.Lookup(ctx, sessionID)
	if err != nil || session == nil {
		return false, err
	}

	session.IsActive = false
	if err := s.write(ctx, session); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisSessionStore) GetByTransaction(ctx context.Context, transactionID string) (*models.UserSession, error) {
	sessions, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].TransactionID == transactionID && sessions[i].IsActive {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (s *RedisSessionStore) GetActiveSessions(ctx context.Context) ([]models.UserSession, error) {
	sessions, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var out []models.UserSession
	for _, session := range sessions {
		if session.IsActive && session.ExpiresAt.After(now) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *RedisSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	sessions, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	cleaned := 0
	for _, session := range sessions {
		if session.ExpiresAt.Before(now) {
			if err := s.client.Del(ctx, sessionKey(session.SessionID)).Err(); err != nil {
				return cleaned, err
			}
			cleaned++
		}
	}
	return cleaned, nil
}

func (s *RedisSessionStore) Extend(ctx context.Context, sessionID string, days int) (*models.UserSession, error) {
	expiresAt := time.Now().AddDate(0, 0, days)
	return s.Update(ctx, sessionID, models.SessionUpdate{ExpiresAt: &expiresAt})
}

func (s *RedisSessionStore) Stats(ctx context.Context) (models.SessionStats, error) {
	sessions, err := s.scan(ctx)
	if err != nil {
		return models.SessionStats{}, err
	}

	now := time.Now()
	stats := models.SessionStats{ByPlan: make(map[string]int)}
	for _, session := range sessions {
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

func (s *RedisSessionStore) write(ctx context.Context, session *models.UserSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.SessionID), data, 0).Err()
}

func (s *RedisSessionStore) scan(ctx context.Context) ([]models.UserSession, error) {
	var out []models.UserSession

	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var session models.UserSession
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
