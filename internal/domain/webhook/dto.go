// internal/domain/webhook/dto.go
package webhook

type CreateWebhookRequest struct {
	URL         string   `json:"url" binding:"required,url"`
	Description string   `json:"description"`
	Events      []string `json:"events" binding:"required,min=1"`
}

type UpdateWebhookRequest struct {
	URL         *string  `json:"url" binding:"omitempty,url"`
	Description *string  `json:"description"`
	Events      []string `json:"events"`
	IsActive    *bool    `json:"is_active"`
}

// RevealSecretResponse carries a freshly rotated secret. Revealing always
// regenerates: the previous value stops verifying the moment this is
// returned.
type RevealSecretResponse struct {
	Secret    string `json:"secret"`
	RotatedAt string `json:"rotated_at"`
}

type LogListFilters struct {
	Successful *bool  `form:"successful"`
	EventType  string `form:"event_type"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
}
