package service

import (
	"context"

	"github.com/gatherly/gatherly/internal/api/dto"
	ierr "github.com/gatherly/gatherly/internal/errors"
)

// OwnerService manages owner accounts and their billing identity
type OwnerService interface {
	CreateOwner(ctx context.Context, req *dto.CreateOwnerRequest) (*dto.OwnerResponse, error)
	GetOwner(ctx context.Context, id string) (*dto.OwnerResponse, error)
	SetDefaultCard(ctx context.Context, ownerID string, req *dto.SetDefaultCardRequest) (*dto.SetDefaultCardResponse, error)
}

type ownerService struct {
	ServiceParams
}

func NewOwnerService(params ServiceParams) OwnerService {
	return &ownerService{ServiceParams: params}
}

func (s *ownerService) CreateOwner(ctx context.Context, req *dto.CreateOwnerRequest) (*dto.OwnerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.OwnerRepo.GetByEmail(ctx, req.Email)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("owner already exists").
			WithHintf("An owner with email %s already exists", req.Email).
			Mark(ierr.ErrAlreadyExists)
	}

	o := req.ToOwner()
	if err := s.OwnerRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("created owner", "owner_id", o.ID, "email", o.Email)
	return &dto.OwnerResponse{Owner: o}, nil
}

func (s *ownerService) GetOwner(ctx context.Context, id string) (*dto.OwnerResponse, error) {
	o, err := s.OwnerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.OwnerResponse{Owner: o}, nil
}

// SetDefaultCard registers a payment source for the owner. An owner without a
// billing identity gets one created from the source; an owner with one gets
// the source attached and promoted to default.
func (s *ownerService) SetDefaultCard(ctx context.Context, ownerID string, req *dto.SetDefaultCardRequest) (*dto.SetDefaultCardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.OwnerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !o.HasBillingCustomer() {
		cust, err := s.BillingProvider.CreateCustomer(ctx, billingCustomerRequest(o, req.Source))
		if err != nil {
			return nil, err
		}

		o.BillingCustomerID = cust.ID
		if err := s.OwnerRepo.Update(ctx, o); err != nil {
			return nil, err
		}

		s.Logger.Infow("created billing customer for owner",
			"owner_id", o.ID,
			"billing_customer_id", cust.ID)
		return &dto.SetDefaultCardResponse{Customer: cust}, nil
	}

	sourceID, err := s.BillingProvider.CreateCustomerSource(ctx, o.BillingCustomerID, req.Source)
	if err != nil {
		return nil, err
	}

	cust, err := s.BillingProvider.UpdateCustomerDefaultSource(ctx, o.BillingCustomerID, sourceID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated default card for owner",
		"owner_id", o.ID,
		"billing_customer_id", o.BillingCustomerID,
		"source_id", sourceID)
	return &dto.SetDefaultCardResponse{Customer: cust}, nil
}
