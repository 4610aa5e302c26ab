// internal/shopify/order.go
package shopify

// OrderPayload is the subset of Shopify's orders/create webhook body the
// loyalty flow needs. Monetary fields arrive as strings on the wire.
type OrderPayload struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	TotalPrice string         `json:"total_price"`
	Currency   string         `json:"currency"`
	Customer   *OrderCustomer `json:"customer"`
}

type OrderCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CustomerEmail prefers the customer object's email over the order-level
// one, which Shopify leaves blank on some channels.
func (o *OrderPayload) CustomerEmail() string {
	if o.Customer != nil && o.Customer.Email != "" {
		return o.Customer.Email
	}
	return o.Email
}

// CustomerName assembles a display name, falling back to the email.
func (o *OrderPayload) CustomerName() string {
	if o.Customer == nil {
		return o.Email
	}
	name := o.Customer.FirstName
	if o.Customer.LastName != "" {
		if name != "" {
			name += " "
		}
		name += o.Customer.LastName
	}
	if name == "" {
		return o.CustomerEmail()
	}
	return name
}
