// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager stores dashboard sessions in Redis, keyed by merchant and jti.
// Redis is the single source of truth; an evicted session is a revoked one.
type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// CreateSession stores a new session with a TTL matching the token expiry.
func (m *Manager) CreateSession(ctx context.Context, s *SessionData) error {
	key := m.sessionKey(s.MerchantID, s.JTI)

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}

	return nil
}

// GetSession retrieves a session; a missing key means the session was
// revoked or expired.
func (m *Manager) GetSession(ctx context.Context, merchantID, jti string) (*SessionData, error) {
	key := m.sessionKey(merchantID, jti)

	data, err := m.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.LastActivityAt = time.Now()
	go m.touch(context.Background(), key, &s)

	return &s, nil
}

// RevokeSession deletes a single session.
func (m *Manager) RevokeSession(ctx context.Context, merchantID, jti string) error {
	return m.client.Del(ctx, m.sessionKey(merchantID, jti)).Err()
}

// RevokeAllSessions deletes every session for a merchant. Used on app
// uninstall and on API key revocation.
func (m *Manager) RevokeAllSessions(ctx context.Context, merchantID string) (int64, error) {
	pattern := fmt.Sprintf("session:%s:*", merchantID)

	var deleted int64
	iter := m.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete session %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan sessions: %w", err)
	}

	return deleted, nil
}

func (m *Manager) touch(ctx context.Context, key string, s *SessionData) {
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	// KeepTTL so activity updates never extend the session lifetime.
	m.client.Set(ctx, key, data, redis.KeepTTL)
}

func (m *Manager) sessionKey(merchantID, jti string) string {
	return fmt.Sprintf("session:%s:%s", merchantID, jti)
}
