// internal/shopify/verify_test.go
package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookHMAC(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":123,"email":"buyer@example.com"}`)

	assert.True(t, VerifyWebhookHMAC(secret, body, sign(secret, body)))
	assert.False(t, VerifyWebhookHMAC(secret, body, sign("wrong-secret", body)))
	assert.False(t, VerifyWebhookHMAC(secret, []byte(`{"id":124}`), sign(secret, body)))
	assert.False(t, VerifyWebhookHMAC(secret, body, ""))
	assert.False(t, VerifyWebhookHMAC(secret, body, "not-base64-!!!"))
}

func TestOrderPayloadCustomerEmail(t *testing.T) {
	t.Run("customer email preferred", func(t *testing.T) {
		o := OrderPayload{
			Email:    "order@example.com",
			Customer: &OrderCustomer{Email: "customer@example.com"},
		}
		assert.Equal(t, "customer@example.com", o.CustomerEmail())
	})

	t.Run("falls back to order email", func(t *testing.T) {
		o := OrderPayload{Email: "order@example.com"}
		assert.Equal(t, "order@example.com", o.CustomerEmail())

		o.Customer = &OrderCustomer{}
		assert.Equal(t, "order@example.com", o.CustomerEmail())
	})
}

func TestOrderPayloadCustomerName(t *testing.T) {
	tests := []struct {
		name  string
		order OrderPayload
		want  string
	}{
		{
			name: "first and last",
			order: OrderPayload{
				Customer: &OrderCustomer{FirstName: "Ada", LastName: "Lovelace"},
			},
			want: "Ada Lovelace",
		},
		{
			name: "first only",
			order: OrderPayload{
				Customer: &OrderCustomer{FirstName: "Ada"},
			},
			want: "Ada",
		},
		{
			name: "no name falls back to email",
			order: OrderPayload{
				Customer: &OrderCustomer{Email: "customer@example.com"},
			},
			want: "customer@example.com",
		},
		{
			name:  "no customer falls back to order email",
			order: OrderPayload{Email: "order@example.com"},
			want:  "order@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.CustomerName())
		})
	}
}

func TestCustomerPayloadName(t *testing.T) {
	tests := []struct {
		name string
		cust CustomerPayload
		want string
	}{
		{"first and last", CustomerPayload{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"last only", CustomerPayload{LastName: "Lovelace"}, "Lovelace"},
		{"no name falls back to email", CustomerPayload{Email: "c@example.com"}, "c@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cust.Name())
		})
	}
}
