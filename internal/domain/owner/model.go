package owner

import (
	"time"

	"github.com/gatherly/gatherly/internal/types"
)

// Owner represents an account that owns zero or more communities and holds
// one consolidated monthly subscription with the billing provider.
type Owner struct {
	// ID is the unique identifier for the owner
	ID string `db:"id" json:"id"`

	// Email is the email of the owner
	Email string `db:"email" json:"email"`

	// Name is the display name of the owner
	Name string `db:"name" json:"name"`

	// BillingCustomerID is the billing provider's customer identity.
	// Empty until the owner first registers a payment source.
	BillingCustomerID string `db:"billing_customer_id" json:"billing_customer_id,omitempty"`

	// Tickets is the banked activation credit count. A ticket is one
	// unit-month, created when a community is deactivated before its paid
	// period ends. Always non-negative.
	Tickets int `db:"tickets" json:"tickets"`

	// TicketExpiry marks the cycle boundary through which banked tickets
	// remain valid. Tickets are only meaningful while now < TicketExpiry.
	TicketExpiry *time.Time `db:"ticket_expiry" json:"ticket_expiry,omitempty"`

	types.BaseModel
}

// HasBillingCustomer reports whether the owner has a billing provider identity.
func (o *Owner) HasBillingCustomer() bool {
	return o.BillingCustomerID != ""
}
