// internal/domain/apikey/dto.go
package apikey

import "time"

type CreateAPIKeyRequest struct {
	Name        string      `json:"name" binding:"required,max=255"`
	Environment Environment `json:"environment" binding:"required,oneof=test production"`
	Permissions []string    `json:"permissions"`
	ExpiresAt   *time.Time  `json:"expires_at"`
}

// CreateAPIKeyResponse is the only place the raw key ever appears.
type CreateAPIKeyResponse struct {
	Key    APIKey `json:"api_key"`
	RawKey string `json:"raw_key"`
}

type TokenRequest struct {
	// Raw API key; merchant comes from the X-Merchant-ID header.
	APIKey string `json:"api_key" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
