// internal/shopify/customer.go
package shopify

// CustomerPayload is the subset of Shopify's customers/create and
// customers/update webhook bodies used for member upserts.
type CustomerPayload struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Name assembles a display name, falling back to the email.
func (c *CustomerPayload) Name() string {
	name := c.FirstName
	if c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += c.LastName
	}
	if name == "" {
		return c.Email
	}
	return name
}
