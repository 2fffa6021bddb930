package order

import (
	"time"

	"github.com/teamthreads/storefront/order/internal/service/models/environment"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
)

// ContactInfo holds the customer's validated, sanitized contact fields.
type ContactInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Order represents a single customer transaction.
//
// TotalAmount is always server-computed; the client-submitted value is
// discarded after price verification. OrderNumber and ShortOrderNumber are
// immutable once assigned.
type Order struct {
	ContactInfo      ContactInfo             `json:"contactInfo"`
	Items            []orderitem.OrderItem   `json:"items"`
	TotalAmount      float64                 `json:"totalAmount"`
	OrderDate        time.Time               `json:"orderDate"`
	Environment      environment.Environment `json:"environment"`
	StoreSlug        string                  `json:"storeSlug,omitempty"`
	OrderNumber      string                  `json:"orderNumber,omitempty"`
	ShortOrderNumber string                  `json:"shortOrderNumber,omitempty"`
}

// Redacted is a bounded snapshot of an order, safe to put in audit logs:
// contact info, item count, total and store, but no per-item detail.
type Redacted struct {
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	ItemCount int     `json:"itemCount"`
	Total     float64 `json:"total"`
	StoreSlug string  `json:"storeSlug,omitempty"`
}

// Redact builds the bounded audit snapshot of the order.
func (o *Order) Redact() Redacted {
	return Redacted{
		Email:     o.ContactInfo.Email,
		FirstName: o.ContactInfo.FirstName,
		LastName:  o.ContactInfo.LastName,
		Phone:     o.ContactInfo.Phone,
		ItemCount: len(o.Items),
		Total:     o.TotalAmount,
		StoreSlug: o.StoreSlug,
	}
}
