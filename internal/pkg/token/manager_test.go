// internal/pkg/token/manager_test.go
package token

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return NewManager(key, &key.PublicKey, "loyaltystudio", "loyaltystudio-dashboard", "test-key", ttl)
}

func TestGenerateAndVerify(t *testing.T) {
	m := testManager(t, time.Hour)

	signed, jti, err := m.Generate("mrc_1", "key_1", "test", []string{"read", "write"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, jti)

	claims, err := m.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, "mrc_1", claims.MerchantID)
	assert.Equal(t, "key_1", claims.APIKeyID)
	assert.Equal(t, "test", claims.Environment)
	assert.Equal(t, []string{"read", "write"}, claims.Permissions)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "mrc_1", claims.Subject)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := testManager(t, -time.Minute)

	signed, _, err := m.Generate("mrc_1", "key_1", "test", nil)
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	m := testManager(t, time.Hour)
	other := testManager(t, time.Hour)

	signed, _, err := m.Generate("mrc_1", "key_1", "test", nil)
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	issuing := NewManager(key, &key.PublicKey, "other-service", "other-audience", "k", time.Hour)
	verifying := NewManager(key, &key.PublicKey, "loyaltystudio", "loyaltystudio-dashboard", "k", time.Hour)

	signed, _, err := issuing.Generate("mrc_1", "key_1", "test", nil)
	require.NoError(t, err)

	_, err = verifying.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager(t, time.Hour)

	_, err := m.Verify("not.a.token")
	assert.Error(t, err)
}
