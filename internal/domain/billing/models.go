package billing

import (
	"strings"
	"time"
)

// Proration line items are tagged by description prefix so stale adjustments
// from prior reconciliations can be recognized and purged. The prefixes match
// the billing provider's own proration descriptions.
const (
	ProrationChargePrefix = "Remaining time on"
	ProrationCreditPrefix = "Unused time on"
)

// SubscriptionStatus is the provider-side subscription lifecycle status
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
)

// Customer is the provider-side billing identity for an owner
type Customer struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DefaultSourceID string    `json:"default_source_id,omitempty"`
	Created         time.Time `json:"created"`
}

// Subscription is the provider-side consolidated subscription. Quantity is
// the billed unit count and the single source of truth the reconciliation
// engine keeps consistent with the owner's active community count.
type Subscription struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customer_id"`
	PlanID     string             `json:"plan_id"`
	Quantity   int64              `json:"quantity"`
	UnitAmount int64              `json:"unit_amount"`
	Currency   string             `json:"currency"`
	Status     SubscriptionStatus `json:"status"`
	Created    time.Time          `json:"created"`
}

// Invoice is a provider-side invoice, either issued or an upcoming preview
type Invoice struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	Currency       string    `json:"currency"`
	Created        time.Time `json:"created"`
}

// InvoiceItem is a provider-side line item. While InvoiceID is empty the
// item is detached: a pending charge or credit not yet folded into an invoice.
type InvoiceItem struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// IsDetached reports whether the item is not yet attached to an invoice
func (i *InvoiceItem) IsDetached() bool {
	return i.InvoiceID == ""
}

// IsProrationAdjustment reports whether the item is a proration adjustment
// recognizable by its description prefix
func (i *InvoiceItem) IsProrationAdjustment() bool {
	return strings.HasPrefix(i.Description, ProrationChargePrefix) ||
		strings.HasPrefix(i.Description, ProrationCreditPrefix)
}
