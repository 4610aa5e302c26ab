// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	xerrors "loyaltystudio-service/internal/pkg/errors"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *service.AuthService
	keyService  *service.APIKeyService
}

func NewAuthMiddleware(authService *service.AuthService, keyService *service.APIKeyService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		keyService:  keyService,
	}
}

// APIKeyAuth authenticates server-to-server requests via the X-API-Key
// and X-Merchant-ID header pair.
func (m *AuthMiddleware) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-API-Key")
		merchantID := c.GetHeader("X-Merchant-ID")

		if rawKey == "" || merchantID == "" {
			response.Error(c, http.StatusUnauthorized, "missing api key or merchant id", nil)
			return
		}

		key, err := m.keyService.Verify(c.Request.Context(), merchantID, rawKey)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid api key", nil)
			return
		}

		c.Set("merchant_id", merchantID)
		c.Set("api_key_id", key.ID)
		c.Set("environment", string(key.Environment))
		c.Set("permissions", []string(key.Permissions))

		c.Next()
	}
}

// BearerAuth authenticates dashboard requests via session tokens. The
// token must verify and its Redis session must still be alive.
func (m *AuthMiddleware) BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := extractToken(c)
		if tok == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.VerifyToken(c.Request.Context(), tok)
		if err != nil {
			if xerrors.Is(err, xerrors.ErrSessionExpired) {
				response.Error(c, http.StatusUnauthorized, "session expired", nil)
				return
			}
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set("merchant_id", claims.MerchantID)
		c.Set("api_key_id", claims.APIKeyID)
		c.Set("environment", claims.Environment)
		c.Set("permissions", claims.Permissions)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// Auth accepts either credential: bearer token first, API key pair as
// the fallback. Most dashboard routes mount this.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	apiKey := m.APIKeyAuth()
	bearer := m.BearerAuth()

	return func(c *gin.Context) {
		if extractToken(c) != "" {
			bearer(c)
			return
		}
		apiKey(c)
	}
}

// RequirePermission requires at least one of the given permissions.
// MUST be used after Auth().
func (m *AuthMiddleware) RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted := GetPermissions(c)

		for _, g := range granted {
			for _, want := range permissions {
				if g == want {
					c.Next()
					return
				}
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_permissions": permissions,
		})
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// Websocket clients cannot set headers; allow a query param there.
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}
