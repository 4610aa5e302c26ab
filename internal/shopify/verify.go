// internal/shopify/verify.go
package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookHMAC checks the X-Shopify-Hmac-Sha256 header against the
// raw request body. Shopify sends the digest base64-encoded.
func VerifyWebhookHMAC(appSecret string, body []byte, header string) bool {
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}
