package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gatherly/gatherly/internal/api/dto"
	"github.com/gatherly/gatherly/internal/domain/billing"
	"github.com/gatherly/gatherly/internal/domain/community"
	"github.com/gatherly/gatherly/internal/domain/owner"
	"github.com/gatherly/gatherly/internal/domain/proration"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/testutil"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/stretchr/testify/suite"
)

type MembershipServiceSuite struct {
	testutil.BaseServiceTestSuite
	service MembershipService
	params  ServiceParams

	// fixed clock: the 16th day of a 30-day April cycle
	anchor time.Time
	now    time.Time
}

func TestMembershipService(t *testing.T) {
	suite.Run(t, new(MembershipServiceSuite))
}

func (s *MembershipServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.params = ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		OwnerRepo:           s.GetStores().OwnerRepo,
		CommunityRepo:       s.GetStores().CommunityRepo,
		BillingProvider:     s.GetBilling(),
		ProrationCalculator: proration.NewCalculator(),
		Cache:               s.GetCache(),
	}
	s.service = NewMembershipService(s.params)

	s.anchor = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	s.now = time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)
	s.service.(*membershipService).now = func() time.Time { return s.now }
}

func (s *MembershipServiceSuite) seedOwner(billingCustomerID string) *owner.Owner {
	o := &owner.Owner{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OWNER),
		Email:             fmt.Sprintf("%s@example.com", types.GenerateUUID()),
		Name:              "Test Owner",
		BillingCustomerID: billingCustomerID,
		BaseModel:         types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().OwnerRepo.Create(s.GetContext(), o))
	return o
}

func (s *MembershipServiceSuite) seedCommunity(ownerID string, activated bool) *community.Community {
	c := &community.Community{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMUNITY),
		OwnerID:   ownerID,
		Name:      "Chess Club",
		Category:  "games",
		Address:   "12 Main St",
		Activated: activated,
		BaseModel: types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().CommunityRepo.Create(s.GetContext(), c))
	return c
}

func (s *MembershipServiceSuite) seedSubscription(customerID string, quantity int64) *billing.Subscription {
	sub := &billing.Subscription{
		ID:         "sub_seed",
		CustomerID: customerID,
		PlanID:     s.GetConfig().Stripe.MonthlyPlanID,
		Quantity:   quantity,
		UnitAmount: 1000,
		Currency:   "usd",
		Status:     billing.SubscriptionStatusActive,
		Created:    s.anchor,
	}
	s.GetBilling().SeedSubscription(sub)
	return sub
}

func (s *MembershipServiceSuite) getOwner(id string) *owner.Owner {
	o, err := s.GetStores().OwnerRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return o
}

func (s *MembershipServiceSuite) getCommunity(id string) *community.Community {
	c, err := s.GetStores().CommunityRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return c
}

func (s *MembershipServiceSuite) TestFirstActivationCreatesSubscription() {
	o := s.seedOwner("")
	c := s.seedCommunity(o.ID, false)

	resp, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
		Source:      "tok_visa",
	})
	s.NoError(err)
	s.NotNil(resp.Customer)
	s.NotNil(resp.Subscription)
	s.Equal(int64(1), resp.Subscription.Quantity)
	s.NotNil(resp.LastInvoice, "first subscription invoice should be reported")

	s.True(s.getCommunity(c.ID).Activated)
	s.True(s.getOwner(o.ID).HasBillingCustomer())

	// first activation never prorates
	s.Zero(s.GetBilling().CallCount("CreateInvoiceItem"))
	s.Zero(s.GetBilling().CallCount("UpdateSubscriptionQuantity"))
	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepCreateSubscription))
}

func (s *MembershipServiceSuite) TestActivationWithoutBillingInfoFails() {
	o := s.seedOwner("")
	c := s.seedCommunity(o.ID, false)

	_, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.Error(err)
	s.True(ierr.IsNoBillingInfo(err))
	s.False(s.getCommunity(c.ID).Activated)
	s.Empty(s.GetBilling().Calls)
}

func (s *MembershipServiceSuite) TestActivateOwnerNotFound() {
	_, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     "owner_missing",
		CommunityID: "comm_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MembershipServiceSuite) TestActivateForeignCommunityRejected() {
	o := s.seedOwner("cus_1")
	other := s.seedOwner("cus_2")
	c := s.seedCommunity(other.ID, false)

	_, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

// Third community activated 15 of 30 days into the cycle on a $10/unit plan:
// delta 2-2+1=1, no tickets, so the proration item is round(1 * 15/30 * 1000)
// = 500 cents, invoiced immediately.
func (s *MembershipServiceSuite) TestThirdCommunityMidCycleProration() {
	o := s.seedOwner("cus_1")
	s.seedCommunity(o.ID, true)
	s.seedCommunity(o.ID, true)
	c := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 2)

	resp, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.NoError(err)
	s.Equal(int64(3), resp.Subscription.Quantity)

	s.Equal(1, s.GetBilling().CallCount("CreateInvoiceItem"))
	var item *billing.InvoiceItem
	for _, it := range s.GetBilling().InvoiceItems {
		item = it
	}
	s.Require().NotNil(item)
	s.Equal(int64(500), item.Amount)
	s.Equal("One-off invoice for remainder. qty: 1", item.Description)
	s.False(item.IsDetached(), "the item should be folded into the one-off invoice")

	s.Require().NotNil(resp.LastInvoice)
	s.Equal(int64(500), resp.LastInvoice.Total)
	s.Equal("open", resp.LastInvoice.Status)

	got := s.getOwner(o.ID)
	s.Zero(got.Tickets)
	s.Require().NotNil(got.TicketExpiry)
	s.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got.TicketExpiry.UTC())

	s.True(s.getCommunity(c.ID).Activated)
	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepCreateInvoice))
}

func (s *MembershipServiceSuite) TestDeactivationBanksTicketAndPurges() {
	o := s.seedOwner("cus_1")
	c := s.seedCommunity(o.ID, true)
	s.seedCommunity(o.ID, true)
	s.seedSubscription("cus_1", 2)
	s.GetBilling().SeedInvoiceItem(&billing.InvoiceItem{
		ID:          "ii_stale",
		CustomerID:  "cus_1",
		Amount:      250,
		Currency:    "usd",
		Description: "Remaining time on Community Monthly after change",
	})

	resp, err := s.service.DeactivateCommunity(s.GetContext(), &dto.DeactivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.NoError(err)
	s.Equal(int64(1), resp.Subscription.Quantity)

	got := s.getOwner(o.ID)
	s.Equal(1, got.Tickets)
	s.False(s.getCommunity(c.ID).Activated)

	// stale proration item purged, no new charge created
	s.NotContains(s.GetBilling().InvoiceItems, "ii_stale")
	s.Zero(s.GetBilling().CallCount("CreateInvoiceItem"))
	s.Zero(s.GetBilling().CallCount("CreateInvoice"))
}

func (s *MembershipServiceSuite) TestDeactivateWithoutBillingIdentityOnlyFlips() {
	o := s.seedOwner("")
	c := s.seedCommunity(o.ID, true)

	resp, err := s.service.DeactivateCommunity(s.GetContext(), &dto.DeactivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.NoError(err)
	s.Nil(resp.Subscription)
	s.False(s.getCommunity(c.ID).Activated)
	s.Empty(s.GetBilling().Calls)
	s.Equal(types.StepStatusSkipped, resp.Steps.StatusOf(types.StepFetchSubscription))
}

// Billed quantity already covers more units than observed: the subscription
// update is skipped but the community still flips on.
func (s *MembershipServiceSuite) TestActivateQtyNonPositiveSkipsUpdate() {
	o := s.seedOwner("cus_1")
	s.seedCommunity(o.ID, true)
	s.seedCommunity(o.ID, true)
	c := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 5)

	resp, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.NoError(err)
	s.Zero(s.GetBilling().CallCount("UpdateSubscriptionQuantity"))
	s.Zero(s.GetBilling().CallCount("CreateInvoiceItem"))
	s.True(s.getCommunity(c.ID).Activated)
	s.Equal(types.StepStatusSkipped, resp.Steps.StatusOf(types.StepUpdateQuantity))
}

// Deactivate then reactivate within the same cycle: the banked ticket fully
// offsets the new unit, so nothing is billed.
func (s *MembershipServiceSuite) TestBankThenConsumeOffsets() {
	o := s.seedOwner("cus_1")
	active := s.seedCommunity(o.ID, true)
	idle := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 1)

	_, err := s.service.DeactivateCommunity(s.GetContext(), &dto.DeactivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: active.ID,
	})
	s.NoError(err)
	s.Equal(1, s.getOwner(o.ID).Tickets)

	resp, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: idle.ID,
	})
	s.NoError(err)
	s.Equal(int64(1), resp.Subscription.Quantity)
	s.Zero(s.getOwner(o.ID).Tickets)

	// ticket consumed instead of billing
	s.Zero(s.GetBilling().CallCount("CreateInvoiceItem"))
	s.Zero(s.GetBilling().CallCount("CreateInvoice"))
	s.Equal(types.StepStatusSkipped, resp.Steps.StatusOf(types.StepCreateProrationItem))
}

// failingCommunityRepo fails every Update to simulate a flip failure after
// the subscription has already been changed.
type failingCommunityRepo struct {
	community.Repository
}

func (r *failingCommunityRepo) Update(ctx context.Context, c *community.Community) error {
	return ierr.NewError("community update failed").Mark(ierr.ErrDatabase)
}

func (s *MembershipServiceSuite) TestFlipFailureAfterQuantityUpdateIsSurfaced() {
	o := s.seedOwner("cus_1")
	s.seedCommunity(o.ID, true)
	c := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 1)

	params := s.params
	params.CommunityRepo = &failingCommunityRepo{Repository: s.GetStores().CommunityRepo}
	svc := NewMembershipService(params)
	svc.(*membershipService).now = func() time.Time { return s.now }

	resp, err := svc.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.Error(err)
	s.Require().NotNil(resp, "step trace must be reported on post-commit failure")

	// the quantity change stands: nothing is rolled back
	s.Equal(int64(2), s.GetBilling().Subscriptions["sub_seed"].Quantity)
	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepUpdateQuantity))
	s.Equal(types.StepStatusFailed, resp.Steps.StatusOf(types.StepFlipCommunity))
	s.False(s.getCommunity(c.ID).Activated)
}

func (s *MembershipServiceSuite) TestPurgeFailureAfterCommitKeepsGoing() {
	o := s.seedOwner("cus_1")
	s.seedCommunity(o.ID, true)
	c := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 1)
	s.GetBilling().Fail("ListInvoiceItems")

	resp, err := s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.Error(err)
	s.True(ierr.IsBillingProvider(err))
	s.Require().NotNil(resp)

	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepUpdateQuantity))
	s.Equal(types.StepStatusFailed, resp.Steps.StatusOf(types.StepPurgeStaleItems))
	// later steps still run best effort
	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepCreateInvoice))
	s.Equal(types.StepStatusDone, resp.Steps.StatusOf(types.StepFlipCommunity))
	s.True(s.getCommunity(c.ID).Activated)
}

func (s *MembershipServiceSuite) TestGetUpcomingInvoiceIsCached() {
	o := s.seedOwner("cus_1")
	s.seedSubscription("cus_1", 2)

	first, err := s.service.GetUpcomingInvoice(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(int64(2000), first.Total)

	_, err = s.service.GetUpcomingInvoice(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(1, s.GetBilling().CallCount("UpcomingInvoice"))
}

func (s *MembershipServiceSuite) TestReconcileRefreshesUpcomingInvoiceCache() {
	o := s.seedOwner("cus_1")
	s.seedCommunity(o.ID, true)
	c := s.seedCommunity(o.ID, false)
	s.seedSubscription("cus_1", 1)

	// warm the cache, then reconcile; the preview must be refetched
	_, err := s.service.GetUpcomingInvoice(s.GetContext(), o.ID)
	s.NoError(err)

	_, err = s.service.ActivateCommunity(s.GetContext(), &dto.ActivateCommunityRequest{
		OwnerID:     o.ID,
		CommunityID: c.ID,
	})
	s.NoError(err)
	s.Equal(2, s.GetBilling().CallCount("UpcomingInvoice"))

	upcoming, err := s.service.GetUpcomingInvoice(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(int64(2000), upcoming.Total, "preview reflects the post-reconcile quantity")
	s.Equal(2, s.GetBilling().CallCount("UpcomingInvoice"))
}
