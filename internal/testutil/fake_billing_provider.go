package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatherly/gatherly/internal/domain/billing"
	ierr "github.com/gatherly/gatherly/internal/errors"
)

// FakeBillingProvider implements billing.Provider against in-memory state.
// Every call is appended to Calls in order, and any method can be told to
// fail via FailOn, so tests can assert exactly which reconciliation steps
// ran and how the engine behaves on partial failure.
type FakeBillingProvider struct {
	mu sync.Mutex

	Calls  []string
	FailOn map[string]error

	Customers     map[string]*billing.Customer
	Subscriptions map[string]*billing.Subscription
	Invoices      map[string]*billing.Invoice
	InvoiceItems  map[string]*billing.InvoiceItem

	// Upcoming is returned by UpcomingInvoice when set; otherwise a
	// synthetic preview is built from the customer's subscription.
	Upcoming *billing.Invoice

	seq int
}

// NewFakeBillingProvider creates an empty fake provider
func NewFakeBillingProvider() *FakeBillingProvider {
	return &FakeBillingProvider{
		FailOn:        make(map[string]error),
		Customers:     make(map[string]*billing.Customer),
		Subscriptions: make(map[string]*billing.Subscription),
		Invoices:      make(map[string]*billing.Invoice),
		InvoiceItems:  make(map[string]*billing.InvoiceItem),
	}
}

// Fail makes the named method return an ErrBillingProvider error
func (f *FakeBillingProvider) Fail(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailOn[method] = ierr.NewError(fmt.Sprintf("%s failed", method)).
		WithHint("Injected failure").
		Mark(ierr.ErrBillingProvider)
}

// CallCount returns how many times the named method was invoked
func (f *FakeBillingProvider) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// SeedSubscription registers an active subscription, bypassing call recording
func (f *FakeBillingProvider) SeedSubscription(sub *billing.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Subscriptions[sub.ID] = sub
}

// SeedInvoiceItem registers a line item, bypassing call recording
func (f *FakeBillingProvider) SeedInvoiceItem(item *billing.InvoiceItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InvoiceItems[item.ID] = item
}

func (f *FakeBillingProvider) record(method string) error {
	f.Calls = append(f.Calls, method)
	if err, ok := f.FailOn[method]; ok {
		return err
	}
	return nil
}

func (f *FakeBillingProvider) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *FakeBillingProvider) CreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*billing.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateCustomer"); err != nil {
		return nil, err
	}

	cust := &billing.Customer{
		ID:              f.nextID("cus"),
		Email:           req.Email,
		Name:            req.Name,
		Description:     req.Description,
		DefaultSourceID: req.SourceToken,
		Created:         time.Now().UTC(),
	}
	f.Customers[cust.ID] = cust
	return cust, nil
}

func (f *FakeBillingProvider) CreateCustomerSource(ctx context.Context, customerID, sourceToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateCustomerSource"); err != nil {
		return "", err
	}

	sourceID := f.nextID("card")
	if cust, ok := f.Customers[customerID]; ok {
		cust.DefaultSourceID = sourceID
	}
	return sourceID, nil
}

func (f *FakeBillingProvider) UpdateCustomerDefaultSource(ctx context.Context, customerID, sourceID string) (*billing.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateCustomerDefaultSource"); err != nil {
		return nil, err
	}

	cust, ok := f.Customers[customerID]
	if !ok {
		cust = &billing.Customer{ID: customerID}
		f.Customers[customerID] = cust
	}
	cust.DefaultSourceID = sourceID
	return cust, nil
}

func (f *FakeBillingProvider) ListActiveSubscriptions(ctx context.Context, customerID, planID string) ([]*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListActiveSubscriptions"); err != nil {
		return nil, err
	}

	var subs []*billing.Subscription
	for _, sub := range f.Subscriptions {
		if sub.CustomerID == customerID && sub.PlanID == planID && sub.Status == billing.SubscriptionStatusActive {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (f *FakeBillingProvider) CreateSubscription(ctx context.Context, customerID, planID string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateSubscription"); err != nil {
		return nil, err
	}

	sub := &billing.Subscription{
		ID:         f.nextID("sub"),
		CustomerID: customerID,
		PlanID:     planID,
		Quantity:   1,
		UnitAmount: 1000,
		Currency:   "usd",
		Status:     billing.SubscriptionStatusActive,
		Created:    time.Now().UTC(),
	}
	f.Subscriptions[sub.ID] = sub

	// A new subscription immediately issues its first invoice
	inv := &billing.Invoice{
		ID:             f.nextID("in"),
		CustomerID:     customerID,
		SubscriptionID: sub.ID,
		Status:         "paid",
		Total:          sub.UnitAmount,
		Currency:       sub.Currency,
		Created:        sub.Created,
	}
	f.Invoices[inv.ID] = inv
	return sub, nil
}

func (f *FakeBillingProvider) UpdateSubscriptionQuantity(ctx context.Context, subscriptionID string, quantity int64) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateSubscriptionQuantity"); err != nil {
		return nil, err
	}

	sub, ok := f.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found").Mark(ierr.ErrBillingProvider)
	}
	sub.Quantity = quantity
	return sub, nil
}

func (f *FakeBillingProvider) ListInvoices(ctx context.Context, customerID, subscriptionID string, createdAfter time.Time) ([]*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListInvoices"); err != nil {
		return nil, err
	}

	var invoices []*billing.Invoice
	for _, inv := range f.Invoices {
		if inv.CustomerID != customerID {
			continue
		}
		if subscriptionID != "" && inv.SubscriptionID != subscriptionID {
			continue
		}
		if !createdAfter.IsZero() && inv.Created.Before(createdAfter) {
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (f *FakeBillingProvider) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) (*billing.InvoiceItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateInvoiceItem"); err != nil {
		return nil, err
	}

	item := &billing.InvoiceItem{
		ID:          f.nextID("ii"),
		CustomerID:  customerID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	}
	f.InvoiceItems[item.ID] = item
	return item, nil
}

func (f *FakeBillingProvider) ListInvoiceItems(ctx context.Context, customerID string, limit int) ([]*billing.InvoiceItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListInvoiceItems"); err != nil {
		return nil, err
	}

	var items []*billing.InvoiceItem
	for _, item := range f.InvoiceItems {
		if item.CustomerID != customerID {
			continue
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (f *FakeBillingProvider) DeleteInvoiceItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteInvoiceItem"); err != nil {
		return err
	}

	if _, ok := f.InvoiceItems[itemID]; !ok {
		return ierr.NewError("invoice item not found").Mark(ierr.ErrBillingProvider)
	}
	delete(f.InvoiceItems, itemID)
	return nil
}

func (f *FakeBillingProvider) CreateInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateInvoice"); err != nil {
		return nil, err
	}

	inv := &billing.Invoice{
		ID:         f.nextID("in"),
		CustomerID: customerID,
		Status:     "draft",
	}

	// Fold in the customer's pending detached items
	for _, item := range f.InvoiceItems {
		if item.CustomerID == customerID && item.IsDetached() {
			item.InvoiceID = inv.ID
			inv.Total += item.Amount
			inv.Currency = item.Currency
		}
	}
	inv.Created = time.Now().UTC()
	f.Invoices[inv.ID] = inv
	return inv, nil
}

func (f *FakeBillingProvider) FinalizeInvoice(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("FinalizeInvoice"); err != nil {
		return nil, err
	}

	inv, ok := f.Invoices[invoiceID]
	if !ok {
		return nil, ierr.NewError("invoice not found").Mark(ierr.ErrBillingProvider)
	}
	inv.Status = "open"
	return inv, nil
}

func (f *FakeBillingProvider) UpcomingInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpcomingInvoice"); err != nil {
		return nil, err
	}

	if f.Upcoming != nil {
		return f.Upcoming, nil
	}

	inv := &billing.Invoice{
		ID:         "in_upcoming_" + customerID,
		CustomerID: customerID,
		Status:     "draft",
	}
	for _, sub := range f.Subscriptions {
		if sub.CustomerID == customerID && sub.Status == billing.SubscriptionStatusActive {
			inv.SubscriptionID = sub.ID
			inv.Total = sub.Quantity * sub.UnitAmount
			inv.Currency = sub.Currency
		}
	}
	return inv, nil
}
