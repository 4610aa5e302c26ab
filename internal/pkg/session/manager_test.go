// internal/pkg/session/manager_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testSession(merchantID, jti string) *SessionData {
	now := time.Now()
	return &SessionData{
		JTI:         jti,
		MerchantID:  merchantID,
		APIKeyID:    "key_1",
		Environment: "test",
		Permissions: []string{"read", "write"},
		IPAddress:   "203.0.113.5",
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}
}

func TestCreateAndGetSession(t *testing.T) {
	m := NewManager(testRedis(t))
	ctx := context.Background()

	require.NoError(t, m.CreateSession(ctx, testSession("mrc_1", "jti_1")))

	got, err := m.GetSession(ctx, "mrc_1", "jti_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mrc_1", got.MerchantID)
	assert.Equal(t, "jti_1", got.JTI)
	assert.Equal(t, []string{"read", "write"}, got.Permissions)
}

func TestGetSessionMissing(t *testing.T) {
	m := NewManager(testRedis(t))

	got, err := m.GetSession(context.Background(), "mrc_1", "no-such-jti")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateSessionAlreadyExpired(t *testing.T) {
	m := NewManager(testRedis(t))

	s := testSession("mrc_1", "jti_1")
	s.ExpiresAt = time.Now().Add(-time.Minute)

	assert.Error(t, m.CreateSession(context.Background(), s))
}

func TestRevokeSession(t *testing.T) {
	m := NewManager(testRedis(t))
	ctx := context.Background()

	require.NoError(t, m.CreateSession(ctx, testSession("mrc_1", "jti_1")))
	require.NoError(t, m.RevokeSession(ctx, "mrc_1", "jti_1"))

	got, err := m.GetSession(ctx, "mrc_1", "jti_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRevokeAllSessions(t *testing.T) {
	m := NewManager(testRedis(t))
	ctx := context.Background()

	require.NoError(t, m.CreateSession(ctx, testSession("mrc_1", "jti_1")))
	require.NoError(t, m.CreateSession(ctx, testSession("mrc_1", "jti_2")))
	require.NoError(t, m.CreateSession(ctx, testSession("mrc_2", "jti_3")))

	deleted, err := m.RevokeAllSessions(ctx, "mrc_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// The other merchant's session survives.
	got, err := m.GetSession(ctx, "mrc_2", "jti_3")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCheckTokenAttempt(t *testing.T) {
	r := NewRateLimiter(testRedis(t))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, remaining, err := r.CheckTokenAttempt(ctx, "203.0.113.5", "ls_test_abc")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(9-i), remaining)
	}

	allowed, remaining, err := r.CheckTokenAttempt(ctx, "203.0.113.5", "ls_test_abc")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(0), remaining)

	// A different IP has its own budget.
	allowed, _, err = r.CheckTokenAttempt(ctx, "198.51.100.7", "ls_test_abc")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestResetTokenAttempts(t *testing.T) {
	r := NewRateLimiter(testRedis(t))
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		r.CheckTokenAttempt(ctx, "203.0.113.5", "ls_test_abc")
	}
	require.NoError(t, r.ResetTokenAttempts(ctx, "203.0.113.5", "ls_test_abc"))

	allowed, remaining, err := r.CheckTokenAttempt(ctx, "203.0.113.5", "ls_test_abc")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(9), remaining)
}

func TestCheckImportAttempt(t *testing.T) {
	r := NewRateLimiter(testRedis(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := r.CheckImportAttempt(ctx, "mrc_1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := r.CheckImportAttempt(ctx, "mrc_1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRemainingTokenAttempts(t *testing.T) {
	r := NewRateLimiter(testRedis(t))
	ctx := context.Background()

	remaining, err := r.RemainingTokenAttempts(ctx, "203.0.113.5", "ls_test_abc")
	require.NoError(t, err)
	assert.Equal(t, int64(10), remaining)

	r.CheckTokenAttempt(ctx, "203.0.113.5", "ls_test_abc")

	remaining, err = r.RemainingTokenAttempts(ctx, "203.0.113.5", "ls_test_abc")
	require.NoError(t, err)
	assert.Equal(t, int64(9), remaining)
}
