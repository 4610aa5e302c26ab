// internal/pkg/secrets/secrets_test.go
package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Run("test environment", func(t *testing.T) {
		raw, prefix, err := GenerateAPIKey("test")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(raw, KeyPrefixTest))
		assert.Equal(t, Redact(raw), prefix)
		assert.True(t, LooksRedacted(prefix))
		assert.False(t, LooksRedacted(raw))
	})

	t.Run("production environment", func(t *testing.T) {
		raw, _, err := GenerateAPIKey("production")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(raw, KeyPrefixProduction))
	})

	t.Run("keys are unique", func(t *testing.T) {
		a, _, err := GenerateAPIKey("test")
		require.NoError(t, err)
		b, _, err := GenerateAPIKey("test")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "ls_test_1234...", Redact("ls_test_1234567890abcdef"))
	assert.Equal(t, "short", Redact("short"), "values at or under the redact length pass through")
}

func TestHashAndCompareKey(t *testing.T) {
	raw, _, err := GenerateAPIKey("test")
	require.NoError(t, err)

	hash, err := HashKey(raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, hash)

	assert.True(t, CompareKey(hash, raw))
	assert.False(t, CompareKey(hash, raw+"x"))
	assert.False(t, CompareKey(hash, ""))
}

func TestGenerateWebhookSecret(t *testing.T) {
	secret, err := GenerateWebhookSecret()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret, WebhookSecretPrefix))
}

func TestSignAndVerify(t *testing.T) {
	secret := "whsec_abc123"
	payload := []byte(`{"type":"member.created","data":{"id":"m_1"}}`)

	sig := Sign(secret, payload)
	assert.True(t, strings.HasPrefix(sig, "sha256="))

	assert.True(t, VerifySignature(secret, payload, sig))
	assert.False(t, VerifySignature("whsec_other", payload, sig))
	assert.False(t, VerifySignature(secret, []byte("tampered"), sig))
	assert.False(t, VerifySignature(secret, payload, "sha256=deadbeef"))
}
