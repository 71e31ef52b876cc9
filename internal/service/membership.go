package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly/gatherly/internal/api/dto"
	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/domain/billing"
	"github.com/gatherly/gatherly/internal/domain/owner"
	"github.com/gatherly/gatherly/internal/domain/proration"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/samber/lo"
)

// invoiceItemPurgeLimit bounds how many pending line items one purge scans
const invoiceItemPurgeLimit = 100

// MembershipService is the reconciliation engine. Activation and deactivation
// keep the owner's consolidated subscription quantity in sync with the count
// of activated communities, spend or bank ticket credits, and manage proration
// line items and one-off invoices with the billing provider.
//
// The billing provider is the system of record for money: once the
// subscription quantity has been written, the run commits best effort.
// Later failures are logged, recorded in the step trace, and the first one is
// returned to the caller alongside the response, but nothing is rolled back.
type MembershipService interface {
	ActivateCommunity(ctx context.Context, req *dto.ActivateCommunityRequest) (*dto.ActivateCommunityResponse, error)
	DeactivateCommunity(ctx context.Context, req *dto.DeactivateCommunityRequest) (*dto.DeactivateCommunityResponse, error)
	GetUpcomingInvoice(ctx context.Context, ownerID string) (*billing.Invoice, error)
}

type membershipService struct {
	ServiceParams
	locks keyedMutex
	now   func() time.Time
}

func NewMembershipService(params ServiceParams) MembershipService {
	return &membershipService{
		ServiceParams: params,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func billingCustomerRequest(o *owner.Owner, source string) billing.CreateCustomerRequest {
	return billing.CreateCustomerRequest{
		SourceToken: source,
		Email:       o.Email,
		Name:        o.Name,
		Description: fmt.Sprintf("Owner %s consolidated membership billing", o.Email),
	}
}

func (s *membershipService) ActivateCommunity(ctx context.Context, req *dto.ActivateCommunityRequest) (*dto.ActivateCommunityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.OwnerID)
	defer unlock()

	o, err := s.OwnerRepo.Get(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	comm, err := s.CommunityRepo.Get(ctx, req.CommunityID)
	if err != nil {
		return nil, err
	}
	if comm.OwnerID != o.ID {
		return nil, ierr.NewError("community does not belong to owner").
			WithHint("The community is owned by a different account").
			WithReportableDetails(map[string]any{
				"community_id": comm.ID,
				"owner_id":     o.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	resp := &dto.ActivateCommunityResponse{}
	trace := &resp.Steps

	// Ensure billing identity. Everything up to the subscription write is
	// validated before any money state is mutated.
	if !o.HasBillingCustomer() {
		if req.Source == "" {
			trace.Failed(types.StepEnsureBillingIdentity, nil)
			return nil, ierr.NewError("owner has no billing information").
				WithHint("Provide a payment source to activate the first community").
				WithReportableDetails(map[string]any{"owner_id": o.ID}).
				Mark(ierr.ErrNoBillingInfo)
		}

		cust, err := s.BillingProvider.CreateCustomer(ctx, billingCustomerRequest(o, req.Source))
		if err != nil {
			trace.Failed(types.StepEnsureBillingIdentity, err)
			return nil, err
		}
		o.BillingCustomerID = cust.ID
		if err := s.OwnerRepo.Update(ctx, o); err != nil {
			trace.Failed(types.StepEnsureBillingIdentity, err)
			return nil, err
		}
		resp.Customer = cust
	} else {
		resp.Customer = &billing.Customer{ID: o.BillingCustomerID, Email: o.Email, Name: o.Name}
	}
	trace.Done(types.StepEnsureBillingIdentity)

	// Pre-activation count: the community being activated is not included.
	activeCount, err := s.countActiveUnits(ctx, o.ID)
	if err != nil {
		trace.Failed(types.StepCountActiveUnits, err)
		return nil, err
	}
	trace.Done(types.StepCountActiveUnits)

	sub, err := s.findActiveSubscription(ctx, o.BillingCustomerID)
	if err != nil {
		trace.Failed(types.StepFetchSubscription, err)
		return nil, err
	}
	trace.Done(types.StepFetchSubscription)

	var commitErr error
	recordFailure := func(step types.ReconcileStep, err error) {
		trace.Failed(step, err)
		s.Logger.Errorw("reconciliation step failed after commit",
			"step", step,
			"owner_id", o.ID,
			"community_id", comm.ID,
			"error", err)
		if commitErr == nil {
			commitErr = err
		}
	}

	if sub == nil {
		// First activation for this owner: a fresh subscription at
		// quantity 1 already bills the full first cycle, so there is no
		// proration and no ticket movement.
		sub, err = s.BillingProvider.CreateSubscription(ctx, o.BillingCustomerID, s.Config.Stripe.MonthlyPlanID)
		if err != nil {
			trace.Failed(types.StepCreateSubscription, err)
			return nil, err
		}
		trace.Done(types.StepCreateSubscription)
		resp.Subscription = sub

		invoices, err := s.BillingProvider.ListInvoices(ctx, o.BillingCustomerID, sub.ID, sub.Created)
		if err != nil {
			recordFailure(types.StepCreateInvoice, err)
		} else {
			if len(invoices) > 0 {
				resp.LastInvoice = invoices[0]
			}
			trace.Done(types.StepCreateInvoice)
		}
	} else {
		resp.Subscription = sub
		qty := activeCount - int(sub.Quantity) + 1
		if qty <= 0 {
			// Billed quantity already covers more units than observed.
			// Treated as reconciliation slack: no quantity change, no
			// charge, the community still flips on below.
			trace.Skipped(types.StepUpdateQuantity)
			s.Logger.Warnw("billed quantity already covers activation, skipping subscription update",
				"owner_id", o.ID,
				"active_count", activeCount,
				"billed_quantity", sub.Quantity)
		} else {
			updated, err := s.BillingProvider.UpdateSubscriptionQuantity(ctx, sub.ID, sub.Quantity+int64(qty))
			if err != nil {
				trace.Failed(types.StepUpdateQuantity, err)
				return nil, err
			}
			trace.Done(types.StepUpdateQuantity)
			resp.Subscription = updated

			// Committed. Everything below is best effort; failures no
			// longer abort the run.
			now := s.now()
			prevDue, nextDue := types.CurrentCycleBounds(sub.Created, now)
			o.ReconcileTicketExpiry(nextDue)
			billed := o.ConsumeTickets(qty)
			trace.Done(types.StepReconcileTickets)

			if err := s.OwnerRepo.Update(ctx, o); err != nil {
				recordFailure(types.StepSaveOwner, err)
			} else {
				trace.Done(types.StepSaveOwner)
			}

			if billed > 0 {
				result, err := s.ProrationCalculator.Calculate(ctx, proration.Params{
					Quantity:      int64(billed),
					CycleStart:    prevDue,
					CycleEnd:      nextDue,
					ProrationDate: now,
					UnitAmount:    updated.UnitAmount,
				})
				if err != nil {
					recordFailure(types.StepCreateProrationItem, err)
				} else if result != nil {
					currency := updated.Currency
					if currency == "" {
						currency = s.Config.Stripe.Currency
					}
					if _, err := s.BillingProvider.CreateInvoiceItem(ctx, o.BillingCustomerID, result.Amount, currency, result.Description); err != nil {
						recordFailure(types.StepCreateProrationItem, err)
					} else {
						trace.Done(types.StepCreateProrationItem)
					}
				}
			} else {
				trace.Skipped(types.StepCreateProrationItem)
			}

			if err := s.purgeStaleProrationItems(ctx, o.BillingCustomerID); err != nil {
				recordFailure(types.StepPurgeStaleItems, err)
			} else {
				trace.Done(types.StepPurgeStaleItems)
			}

			if billed > 0 {
				inv, err := s.issueOneOffInvoice(ctx, o.BillingCustomerID)
				if err != nil {
					recordFailure(types.StepCreateInvoice, err)
				} else {
					trace.Done(types.StepCreateInvoice)
					resp.LastInvoice = inv
				}
			} else {
				trace.Skipped(types.StepCreateInvoice)
			}
		}
	}

	comm.Activated = true
	if err := s.CommunityRepo.Update(ctx, comm); err != nil {
		recordFailure(types.StepFlipCommunity, err)
	} else {
		trace.Done(types.StepFlipCommunity)
	}

	if upcoming, err := s.refreshUpcomingInvoice(ctx, o.BillingCustomerID); err != nil {
		recordFailure(types.StepPreviewInvoice, err)
	} else {
		trace.Done(types.StepPreviewInvoice)
		resp.UpcomingInvoice = upcoming
	}

	return resp, commitErr
}

func (s *membershipService) DeactivateCommunity(ctx context.Context, req *dto.DeactivateCommunityRequest) (*dto.DeactivateCommunityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.OwnerID)
	defer unlock()

	o, err := s.OwnerRepo.Get(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	comm, err := s.CommunityRepo.Get(ctx, req.CommunityID)
	if err != nil {
		return nil, err
	}
	if comm.OwnerID != o.ID {
		return nil, ierr.NewError("community does not belong to owner").
			WithHint("The community is owned by a different account").
			WithReportableDetails(map[string]any{
				"community_id": comm.ID,
				"owner_id":     o.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	resp := &dto.DeactivateCommunityResponse{}
	trace := &resp.Steps

	// Pre-deactivation count: includes the community being deactivated.
	activeCount, err := s.countActiveUnits(ctx, o.ID)
	if err != nil {
		trace.Failed(types.StepCountActiveUnits, err)
		return nil, err
	}
	trace.Done(types.StepCountActiveUnits)

	// Without a billing identity there is nothing to reconcile; the flag
	// just flips off.
	if !o.HasBillingCustomer() {
		trace.Skipped(types.StepFetchSubscription)
		comm.Activated = false
		if err := s.CommunityRepo.Update(ctx, comm); err != nil {
			trace.Failed(types.StepFlipCommunity, err)
			return nil, err
		}
		trace.Done(types.StepFlipCommunity)
		return resp, nil
	}

	sub, err := s.findActiveSubscription(ctx, o.BillingCustomerID)
	if err != nil {
		trace.Failed(types.StepFetchSubscription, err)
		return nil, err
	}
	trace.Done(types.StepFetchSubscription)

	var commitErr error
	recordFailure := func(step types.ReconcileStep, err error) {
		trace.Failed(step, err)
		s.Logger.Errorw("reconciliation step failed after commit",
			"step", step,
			"owner_id", o.ID,
			"community_id", comm.ID,
			"error", err)
		if commitErr == nil {
			commitErr = err
		}
	}

	if sub != nil {
		newQty := int64(activeCount - 1)
		if newQty < 0 {
			newQty = 0
		}
		updated, err := s.BillingProvider.UpdateSubscriptionQuantity(ctx, sub.ID, newQty)
		if err != nil {
			trace.Failed(types.StepUpdateQuantity, err)
			return nil, err
		}
		trace.Done(types.StepUpdateQuantity)
		resp.Subscription = updated

		// Committed; best effort below.
		_, nextDue := types.CurrentCycleBounds(sub.Created, s.now())
		o.ReconcileTicketExpiry(nextDue)
		if activeCount > 0 {
			// The removed unit's unused remainder becomes one banked
			// ticket instead of a refund.
			o.BankTickets(1)
		}
		trace.Done(types.StepReconcileTickets)

		if err := s.OwnerRepo.Update(ctx, o); err != nil {
			recordFailure(types.StepSaveOwner, err)
		} else {
			trace.Done(types.StepSaveOwner)
		}

		if err := s.purgeStaleProrationItems(ctx, o.BillingCustomerID); err != nil {
			recordFailure(types.StepPurgeStaleItems, err)
		} else {
			trace.Done(types.StepPurgeStaleItems)
		}
	} else {
		trace.Skipped(types.StepUpdateQuantity)
	}

	comm.Activated = false
	if err := s.CommunityRepo.Update(ctx, comm); err != nil {
		recordFailure(types.StepFlipCommunity, err)
	} else {
		trace.Done(types.StepFlipCommunity)
	}

	if upcoming, err := s.refreshUpcomingInvoice(ctx, o.BillingCustomerID); err != nil {
		recordFailure(types.StepPreviewInvoice, err)
	} else {
		trace.Done(types.StepPreviewInvoice)
		resp.UpcomingInvoice = upcoming
	}

	return resp, commitErr
}

// GetUpcomingInvoice returns the owner's next invoice preview, served from
// cache when a recent reconciliation already fetched it.
func (s *membershipService) GetUpcomingInvoice(ctx context.Context, ownerID string) (*billing.Invoice, error) {
	o, err := s.OwnerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !o.HasBillingCustomer() {
		return nil, ierr.NewError("owner has no billing information").
			WithHint("The owner has no billing identity yet").
			Mark(ierr.ErrNoBillingInfo)
	}

	key := cache.GenerateKey(cache.PrefixUpcomingInvoice, o.BillingCustomerID)
	if v, ok := s.Cache.Get(ctx, key); ok {
		if inv, ok := v.(*billing.Invoice); ok {
			return inv, nil
		}
	}

	inv, err := s.BillingProvider.UpcomingInvoice(ctx, o.BillingCustomerID)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, inv, cache.DefaultExpiration)
	return inv, nil
}

func (s *membershipService) countActiveUnits(ctx context.Context, ownerID string) (int, error) {
	filter := types.NewCommunityFilter()
	filter.OwnerID = ownerID
	filter.Activated = lo.ToPtr(true)
	return s.CommunityRepo.Count(ctx, filter)
}

// findActiveSubscription returns the owner's single consolidated subscription
// on the configured plan, or nil when none exists yet.
func (s *membershipService) findActiveSubscription(ctx context.Context, customerID string) (*billing.Subscription, error) {
	subs, err := s.BillingProvider.ListActiveSubscriptions(ctx, customerID, s.Config.Stripe.MonthlyPlanID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// purgeStaleProrationItems deletes detached "Remaining time on" / "Unused
// time on" line items left over from prior reconciliations, so the next
// invoice folds in only the current adjustment.
func (s *membershipService) purgeStaleProrationItems(ctx context.Context, customerID string) error {
	items, err := s.BillingProvider.ListInvoiceItems(ctx, customerID, invoiceItemPurgeLimit)
	if err != nil {
		return err
	}

	for _, item := range items {
		if !item.IsDetached() || !item.IsProrationAdjustment() {
			continue
		}
		if err := s.BillingProvider.DeleteInvoiceItem(ctx, item.ID); err != nil {
			return err
		}
		s.Logger.Debugw("purged stale proration item",
			"invoice_item_id", item.ID,
			"description", item.Description)
	}
	return nil
}

// issueOneOffInvoice creates and finalizes an invoice drawing in the
// customer's pending detached line items.
func (s *membershipService) issueOneOffInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	inv, err := s.BillingProvider.CreateInvoice(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.BillingProvider.FinalizeInvoice(ctx, inv.ID)
}

// refreshUpcomingInvoice drops any cached preview for the customer and
// fetches a fresh one; every reconciliation changes what the next invoice
// will contain.
func (s *membershipService) refreshUpcomingInvoice(ctx context.Context, customerID string) (*billing.Invoice, error) {
	key := cache.GenerateKey(cache.PrefixUpcomingInvoice, customerID)
	s.Cache.Delete(ctx, key)

	inv, err := s.BillingProvider.UpcomingInvoice(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, inv, cache.DefaultExpiration)
	return inv, nil
}
