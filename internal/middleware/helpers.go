// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetMerchantID gets the authenticated merchant ID from context.
func GetMerchantID(c *gin.Context) (string, bool) {
	v, exists := c.Get("merchant_id")
	if !exists {
		return "", false
	}

	id, ok := v.(string)
	return id, ok
}

// MustGetMerchantID gets the merchant ID from context or panics.
// Only valid behind Auth().
func MustGetMerchantID(c *gin.Context) string {
	id, ok := GetMerchantID(c)
	if !ok {
		panic("merchant_id not found in context")
	}
	return id
}

// GetJTI gets the session token ID from context. Empty for API key auth.
func GetJTI(c *gin.Context) (string, bool) {
	v, exists := c.Get("jti")
	if !exists {
		return "", false
	}

	jti, ok := v.(string)
	return jti, ok
}

// GetEnvironment gets the credential environment (test or production).
func GetEnvironment(c *gin.Context) string {
	v, exists := c.Get("environment")
	if !exists {
		return ""
	}

	env, _ := v.(string)
	return env
}

// GetPermissions gets the granted permissions from context.
func GetPermissions(c *gin.Context) []string {
	v, exists := c.Get("permissions")
	if !exists {
		return []string{}
	}

	permissions, ok := v.([]string)
	if !ok {
		return []string{}
	}

	return permissions
}
