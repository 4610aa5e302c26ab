// internal/service/auth_service.go
package service

import (
	"context"
	"time"

	"loyaltystudio-service/internal/domain/apikey"
	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/secrets"
	"loyaltystudio-service/internal/pkg/session"
	"loyaltystudio-service/internal/pkg/token"

	"go.uber.org/zap"
)

// AuthService mints dashboard session tokens from API keys. A token is a
// short-lived RS256 JWT backed by a Redis session; revoking the session
// kills the token before its expiry.
type AuthService struct {
	keys     *APIKeyService
	tokens   *token.Manager
	sessions *session.Manager
	limiter  *session.RateLimiter
	logger   *zap.Logger
}

func NewAuthService(
	keys *APIKeyService,
	tokens *token.Manager,
	sessions *session.Manager,
	limiter *session.RateLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		keys:     keys,
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}
}

// IssueToken verifies an API key and mints a session token. Attempts are
// rate limited per IP and key prefix so a leaked merchant ID cannot be
// used to brute-force keys.
func (s *AuthService) IssueToken(ctx context.Context, merchantID, rawKey, ip, userAgent string) (*apikey.TokenResponse, error) {
	allowed, remaining, err := s.limiter.CheckTokenAttempt(ctx, ip, secrets.Redact(rawKey))
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Warn("token attempts rate limited",
			zap.String("merchant_id", merchantID),
			zap.String("ip", ip),
		)
		return nil, xerrors.ErrRateLimited
	}

	key, err := s.keys.Verify(ctx, merchantID, rawKey)
	if err != nil {
		s.logger.Warn("token mint rejected",
			zap.String("merchant_id", merchantID),
			zap.String("ip", ip),
			zap.Int64("attempts_remaining", remaining),
		)
		return nil, xerrors.ErrUnauthorized
	}

	signed, jti, err := s.tokens.Generate(merchantID, key.ID, string(key.Environment), key.Permissions)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(s.tokens.TTL())

	sess := &session.SessionData{
		JTI:            jti,
		MerchantID:     merchantID,
		APIKeyID:       key.ID,
		Environment:    string(key.Environment),
		Permissions:    key.Permissions,
		IPAddress:      ip,
		UserAgent:      userAgent,
		IssuedAt:       now,
		LastActivityAt: now,
		ExpiresAt:      expiresAt,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.limiter.ResetTokenAttempts(ctx, ip, secrets.Redact(rawKey)); err != nil {
		s.logger.Warn("failed to reset token attempts", zap.Error(err))
	}

	return &apikey.TokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// RevokeToken deletes the session behind a token, invalidating it early.
func (s *AuthService) RevokeToken(ctx context.Context, merchantID, jti string) error {
	return s.sessions.RevokeSession(ctx, merchantID, jti)
}

// VerifyToken validates a bearer token and checks its session is alive.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	sess, err := s.sessions.GetSession(ctx, claims.MerchantID, claims.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, xerrors.ErrSessionExpired
	}

	return claims, nil
}
