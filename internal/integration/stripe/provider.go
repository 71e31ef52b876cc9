package stripe

import (
	"context"
	"time"

	"github.com/gatherly/gatherly/internal/domain/billing"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// provider implements billing.Provider on top of the Stripe API
type provider struct {
	client *Client
	logger *logger.Logger
}

// NewProvider creates a Stripe-backed billing provider
func NewProvider(client *Client, logger *logger.Logger) billing.Provider {
	return &provider{
		client: client,
		logger: logger,
	}
}

func (p *provider) CreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*billing.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email:       stripe.String(req.Email),
		Name:        stripe.String(req.Name),
		Description: stripe.String(req.Description),
	}
	if req.SourceToken != "" {
		params.Source = stripe.String(req.SourceToken)
	}

	cust, err := p.client.API().V1Customers.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create billing customer").
			WithReportableDetails(map[string]any{"email": req.Email}).
			Mark(ierr.ErrBillingProvider)
	}

	p.logger.Infow("created stripe customer", "stripe_customer_id", cust.ID, "email", req.Email)
	return customerFromStripe(cust), nil
}

// CreateCustomerSource attaches a new card source to the customer. Stripe
// makes a source attached this way the customer's default.
func (p *provider) CreateCustomerSource(ctx context.Context, customerID, sourceToken string) (string, error) {
	params := &stripe.CustomerUpdateParams{
		Source: stripe.String(sourceToken),
	}

	cust, err := p.client.API().V1Customers.Update(ctx, customerID, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to attach payment source").
			WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
			Mark(ierr.ErrBillingProvider)
	}

	if cust.DefaultSource == nil {
		return "", ierr.NewError("no default source after attach").
			WithHint("Stripe did not return a default payment source").
			Mark(ierr.ErrBillingProvider)
	}
	return cust.DefaultSource.ID, nil
}

func (p *provider) UpdateCustomerDefaultSource(ctx context.Context, customerID, sourceID string) (*billing.Customer, error) {
	params := &stripe.CustomerUpdateParams{
		DefaultSource: stripe.String(sourceID),
	}

	cust, err := p.client.API().V1Customers.Update(ctx, customerID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to set default payment source").
			WithReportableDetails(map[string]any{
				"stripe_customer_id": customerID,
				"source_id":          sourceID,
			}).
			Mark(ierr.ErrBillingProvider)
	}
	return customerFromStripe(cust), nil
}

func (p *provider) ListActiveSubscriptions(ctx context.Context, customerID, planID string) ([]*billing.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Price:    stripe.String(planID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}

	var subs []*billing.Subscription
	for sub, err := range p.client.API().V1Subscriptions.List(ctx, params) {
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to list subscriptions").
				WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
				Mark(ierr.ErrBillingProvider)
		}
		subs = append(subs, subscriptionFromStripe(sub))
	}
	return subs, nil
}

func (p *provider) CreateSubscription(ctx context.Context, customerID, planID string) (*billing.Subscription, error) {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				Price:    stripe.String(planID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	sub, err := p.client.API().V1Subscriptions.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]any{
				"stripe_customer_id": customerID,
				"plan_id":            planID,
			}).
			Mark(ierr.ErrBillingProvider)
	}

	p.logger.Infow("created stripe subscription",
		"stripe_subscription_id", sub.ID,
		"stripe_customer_id", customerID)
	return subscriptionFromStripe(sub), nil
}

func (p *provider) UpdateSubscriptionQuantity(ctx context.Context, subscriptionID string, quantity int64) (*billing.Subscription, error) {
	current, err := p.client.API().V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to retrieve subscription").
			WithReportableDetails(map[string]any{"stripe_subscription_id": subscriptionID}).
			Mark(ierr.ErrBillingProvider)
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, ierr.NewError("subscription has no items").
			WithHint("Subscription is missing its plan item").
			WithReportableDetails(map[string]any{"stripe_subscription_id": subscriptionID}).
			Mark(ierr.ErrBillingProvider)
	}

	params := &stripe.SubscriptionUpdateParams{
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:       stripe.String(current.Items.Data[0].ID),
				Quantity: stripe.Int64(quantity),
			},
		},
	}

	sub, err := p.client.API().V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update subscription quantity").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": subscriptionID,
				"quantity":               quantity,
			}).
			Mark(ierr.ErrBillingProvider)
	}

	p.logger.Infow("updated stripe subscription quantity",
		"stripe_subscription_id", subscriptionID,
		"quantity", quantity)
	return subscriptionFromStripe(sub), nil
}

func (p *provider) ListInvoices(ctx context.Context, customerID, subscriptionID string, createdAfter time.Time) ([]*billing.Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	if subscriptionID != "" {
		params.Subscription = stripe.String(subscriptionID)
	}
	if !createdAfter.IsZero() {
		params.CreatedRange = &stripe.RangeQueryParams{
			GreaterThanOrEqual: createdAfter.Unix(),
		}
	}

	var invoices []*billing.Invoice
	for inv, err := range p.client.API().V1Invoices.List(ctx, params) {
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to list invoices").
				WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
				Mark(ierr.ErrBillingProvider)
		}
		invoices = append(invoices, invoiceFromStripe(inv))
	}
	return invoices, nil
}

func (p *provider) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) (*billing.InvoiceItem, error) {
	params := &stripe.InvoiceItemCreateParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}

	item, err := p.client.API().V1InvoiceItems.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create invoice item").
			WithReportableDetails(map[string]any{
				"stripe_customer_id": customerID,
				"amount":             amount,
			}).
			Mark(ierr.ErrBillingProvider)
	}
	return invoiceItemFromStripe(item), nil
}

func (p *provider) ListInvoiceItems(ctx context.Context, customerID string, limit int) ([]*billing.InvoiceItem, error) {
	params := &stripe.InvoiceItemListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(int64(limit))

	var items []*billing.InvoiceItem
	for item, err := range p.client.API().V1InvoiceItems.List(ctx, params) {
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to list invoice items").
				WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
				Mark(ierr.ErrBillingProvider)
		}
		items = append(items, invoiceItemFromStripe(item))
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (p *provider) DeleteInvoiceItem(ctx context.Context, itemID string) error {
	_, err := p.client.API().V1InvoiceItems.Delete(ctx, itemID, &stripe.InvoiceItemDeleteParams{})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete invoice item").
			WithReportableDetails(map[string]any{"invoice_item_id": itemID}).
			Mark(ierr.ErrBillingProvider)
	}
	return nil
}

func (p *provider) CreateInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	params := &stripe.InvoiceCreateParams{
		Customer:                    stripe.String(customerID),
		PendingInvoiceItemsBehavior: stripe.String("include"),
	}

	inv, err := p.client.API().V1Invoices.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
			Mark(ierr.ErrBillingProvider)
	}

	p.logger.Infow("created stripe invoice", "stripe_invoice_id", inv.ID, "stripe_customer_id", customerID)
	return invoiceFromStripe(inv), nil
}

func (p *provider) FinalizeInvoice(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	inv, err := p.client.API().V1Invoices.FinalizeInvoice(ctx, invoiceID, &stripe.InvoiceFinalizeInvoiceParams{})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to finalize invoice").
			WithReportableDetails(map[string]any{"stripe_invoice_id": invoiceID}).
			Mark(ierr.ErrBillingProvider)
	}
	return invoiceFromStripe(inv), nil
}

func (p *provider) UpcomingInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	params := &stripe.InvoiceCreatePreviewParams{
		Customer: stripe.String(customerID),
	}

	inv, err := p.client.API().V1Invoices.CreatePreview(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to preview upcoming invoice").
			WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
			Mark(ierr.ErrBillingProvider)
	}
	return invoiceFromStripe(inv), nil
}

func customerFromStripe(cust *stripe.Customer) *billing.Customer {
	out := &billing.Customer{
		ID:          cust.ID,
		Email:       cust.Email,
		Name:        cust.Name,
		Description: cust.Description,
		Created:     time.Unix(cust.Created, 0).UTC(),
	}
	if cust.DefaultSource != nil {
		out.DefaultSourceID = cust.DefaultSource.ID
	}
	return out
}

func subscriptionFromStripe(sub *stripe.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:      sub.ID,
		Status:  billing.SubscriptionStatus(sub.Status),
		Created: time.Unix(sub.Created, 0).UTC(),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.Quantity = item.Quantity
		if item.Price != nil {
			out.PlanID = item.Price.ID
			out.UnitAmount = item.Price.UnitAmount
			out.Currency = string(item.Price.Currency)
		}
	}
	return out
}

func invoiceFromStripe(inv *stripe.Invoice) *billing.Invoice {
	out := &billing.Invoice{
		ID:       inv.ID,
		Status:   string(inv.Status),
		Total:    inv.Total,
		Currency: string(inv.Currency),
		Created:  time.Unix(inv.Created, 0).UTC(),
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != nil {
		out.SubscriptionID = inv.Parent.SubscriptionDetails.Subscription.ID
	}
	return out
}

func invoiceItemFromStripe(item *stripe.InvoiceItem) *billing.InvoiceItem {
	out := &billing.InvoiceItem{
		ID:          item.ID,
		Amount:      item.Amount,
		Currency:    string(item.Currency),
		Description: item.Description,
	}
	if item.Customer != nil {
		out.CustomerID = item.Customer.ID
	}
	if item.Invoice != nil {
		out.InvoiceID = item.Invoice.ID
	}
	return out
}
