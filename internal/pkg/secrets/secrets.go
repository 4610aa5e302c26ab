// internal/pkg/secrets/secrets.go
package secrets

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Environment prefixes embedded in raw API keys so a leaked key is
// identifiable without a database lookup.
const (
	KeyPrefixTest       = "ls_test_"
	KeyPrefixProduction = "ls_live_"

	// RedactLen is how many characters of a raw key are stored and shown
	// after creation. Everything past the prefix is shown exactly once.
	RedactLen = 12

	WebhookSecretPrefix = "whsec_"
)

// GenerateAPIKey returns a new raw API key for the given environment.
// The raw value is returned to the caller exactly once; only the bcrypt
// hash and the redacted prefix are stored.
func GenerateAPIKey(environment string) (raw string, prefix string, err error) {
	entropy, err := randomHex(20)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate api key: %w", err)
	}

	envPrefix := KeyPrefixTest
	if environment == "production" {
		envPrefix = KeyPrefixProduction
	}

	raw = envPrefix + entropy
	return raw, Redact(raw), nil
}

// GenerateWebhookSecret returns a new signing secret for a webhook endpoint.
func GenerateWebhookSecret() (string, error) {
	entropy, err := randomHex(24)
	if err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	return WebhookSecretPrefix + entropy, nil
}

// Redact returns the stored/displayed form of a raw key: the identifying
// prefix followed by an ellipsis marker.
func Redact(raw string) string {
	if len(raw) <= RedactLen {
		return raw
	}
	return raw[:RedactLen] + "..."
}

// HashKey hashes a raw API key for at-rest storage.
func HashKey(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

// CompareKey reports whether raw matches the stored bcrypt hash.
func CompareKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Sign computes the hex HMAC-SHA256 of payload under secret, in the
// "sha256=<hex>" form carried by X-Loyalty-Signature.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature produced by Sign in constant time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// LooksRedacted reports whether a key value is a stored redacted prefix
// rather than a raw secret.
func LooksRedacted(key string) bool {
	return strings.HasSuffix(key, "...")
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
