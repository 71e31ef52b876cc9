package billing

import (
	"context"
	"time"
)

// CreateCustomerRequest carries the fields needed to establish a billing
// identity from a payment source token.
type CreateCustomerRequest struct {
	SourceToken string
	Email       string
	Name        string
	Description string
}

// Provider is the narrow interface to the external billing provider. The
// reconciliation engine treats the provider as an external ledger it reads
// and patches incrementally; it is the system of record for money and is
// never rolled back by local logic.
//
// All implementations mark failures with ierr.ErrBillingProvider.
type Provider interface {
	// CreateCustomer creates a billing identity with the given payment source
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)

	// CreateCustomerSource attaches a new payment source to an existing
	// customer and returns its id
	CreateCustomerSource(ctx context.Context, customerID, sourceToken string) (string, error)

	// UpdateCustomerDefaultSource makes the given source the customer default
	UpdateCustomerDefaultSource(ctx context.Context, customerID, sourceID string) (*Customer, error)

	// ListActiveSubscriptions returns the customer's active subscriptions on
	// the given plan, newest first
	ListActiveSubscriptions(ctx context.Context, customerID, planID string) ([]*Subscription, error)

	// CreateSubscription starts a subscription on the plan with quantity 1
	CreateSubscription(ctx context.Context, customerID, planID string) (*Subscription, error)

	// UpdateSubscriptionQuantity patches the billed unit count
	UpdateSubscriptionQuantity(ctx context.Context, subscriptionID string, quantity int64) (*Subscription, error)

	// ListInvoices returns the customer's invoices for a subscription created
	// at or after the given time, newest first
	ListInvoices(ctx context.Context, customerID, subscriptionID string, createdAfter time.Time) ([]*Invoice, error)

	// CreateInvoiceItem creates a detached line item in minor currency units
	CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) (*InvoiceItem, error)

	// ListInvoiceItems returns up to limit of the customer's line items,
	// detached or not
	ListInvoiceItems(ctx context.Context, customerID string, limit int) ([]*InvoiceItem, error)

	// DeleteInvoiceItem removes a detached line item
	DeleteInvoiceItem(ctx context.Context, itemID string) error

	// CreateInvoice creates a one-off invoice drawing in the customer's
	// pending detached line items
	CreateInvoice(ctx context.Context, customerID string) (*Invoice, error)

	// FinalizeInvoice finalizes a draft invoice so it can be paid
	FinalizeInvoice(ctx context.Context, invoiceID string) (*Invoice, error)

	// UpcomingInvoice previews the customer's next invoice
	UpcomingInvoice(ctx context.Context, customerID string) (*Invoice, error)
}
