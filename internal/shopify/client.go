// internal/shopify/client.go
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiVersion     = "2024-10"
	requestTimeout = 15 * time.Second
)

// Client is a thin Admin GraphQL client covering the calls the embedded
// app flow needs: shop metadata during setup and webhook registration.
type Client struct {
	httpClient  *http.Client
	accessToken string
	logger      *zap.Logger
}

func NewClient(accessToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		accessToken: accessToken,
		logger:      logger,
	}
}

// ShopInfo is the subset of shop metadata used to prefill merchant setup.
type ShopInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	CurrencyCode string `json:"currencyCode"`
	IanaTimezone string `json:"ianaTimezone"`
	URL          string `json:"url"`
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// GetShopInfo fetches shop metadata from the Admin API.
func (c *Client) GetShopInfo(ctx context.Context, shopDomain string) (*ShopInfo, error) {
	const query = `
		query {
			shop {
				name
				email
				currencyCode
				ianaTimezone
				url
			}
		}
	`

	var result struct {
		Data struct {
			Shop ShopInfo `json:"shop"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	if err := c.do(ctx, shopDomain, graphQLRequest{Query: query}, &result); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("shop query failed: %s", result.Errors[0].Message)
	}

	return &result.Data.Shop, nil
}

// RegisterWebhook subscribes the app to a shop topic (e.g. ORDERS_CREATE)
// pointing back at our intake endpoint. Returns the subscription ID.
func (c *Client) RegisterWebhook(ctx context.Context, shopDomain, topic, callbackURL string) (string, error) {
	const mutation = `
		mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $webhookSubscription: WebhookSubscriptionInput!) {
			webhookSubscriptionCreate(topic: $topic, webhookSubscription: $webhookSubscription) {
				webhookSubscription {
					id
				}
				userErrors {
					field
					message
				}
			}
		}
	`

	req := graphQLRequest{
		Query: mutation,
		Variables: map[string]interface{}{
			"topic": topic,
			"webhookSubscription": map[string]interface{}{
				"callbackUrl": callbackURL,
				"format":      "JSON",
			},
		},
	}

	var result struct {
		Data struct {
			WebhookSubscriptionCreate struct {
				WebhookSubscription struct {
					ID string `json:"id"`
				} `json:"webhookSubscription"`
				UserErrors []struct {
					Message string `json:"message"`
				} `json:"userErrors"`
			} `json:"webhookSubscriptionCreate"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}

	if err := c.do(ctx, shopDomain, req, &result); err != nil {
		return "", err
	}
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("webhook subscription failed: %s", result.Errors[0].Message)
	}
	if ue := result.Data.WebhookSubscriptionCreate.UserErrors; len(ue) > 0 {
		return "", fmt.Errorf("webhook subscription rejected: %s", ue[0].Message)
	}

	return result.Data.WebhookSubscriptionCreate.WebhookSubscription.ID, nil
}

func (c *Client) do(ctx context.Context, shopDomain string, body graphQLRequest, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build graphql request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	return nil
}
