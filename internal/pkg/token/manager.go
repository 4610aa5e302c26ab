// internal/pkg/token/manager.go
package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// Manager signs and verifies dashboard session tokens (RS256).
type Manager struct {
	priv     *rsa.PrivateKey
	pub      *rsa.PublicKey
	issuer   string
	audience string
	kid      string
	ttl      time.Duration
}

// LoadAndBuild reads the RSA key pair from cfg and builds a Manager.
func LoadAndBuild(cfg Config) (*Manager, error) {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
	}

	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
	}

	return NewManager(priv, pub, cfg.Issuer, cfg.Audience, cfg.KID, cfg.TTL), nil
}

// NewManager builds a Manager from in-memory keys. Used directly by tests.
func NewManager(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer, audience, kid string, ttl time.Duration) *Manager {
	return &Manager{
		priv:     priv,
		pub:      pub,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		ttl:      ttl,
	}
}

// TTL reports the lifetime applied to newly minted tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate mints a session token for a merchant and returns the signed
// token together with its jti.
func (m *Manager) Generate(merchantID, apiKeyID, environment string, permissions []string) (string, string, error) {
	if m.priv == nil {
		return "", "", fmt.Errorf("token manager has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		MerchantID:  merchantID,
		APIKeyID:    apiKeyID,
		Environment: environment,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   merchantID,
			Audience:  []string{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if m.kid != "" {
		tok.Header["kid"] = m.kid
	}

	signed, err := tok.SignedString(m.priv)
	return signed, jti, err
}

// Verify validates a session token and returns its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if m.pub == nil {
		return nil, fmt.Errorf("token manager has nil public key")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	validAudience := false
	for _, aud := range claims.Audience {
		if aud == m.audience {
			validAudience = true
			break
		}
	}
	if !validAudience {
		return nil, fmt.Errorf("invalid audience")
	}

	return claims, nil
}
