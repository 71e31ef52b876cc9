package service

import (
	"testing"

	"github.com/gatherly/gatherly/internal/api/dto"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type OwnerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service OwnerService
}

func TestOwnerService(t *testing.T) {
	suite.Run(t, new(OwnerServiceSuite))
}

func (s *OwnerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewOwnerService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		OwnerRepo:       s.GetStores().OwnerRepo,
		CommunityRepo:   s.GetStores().CommunityRepo,
		BillingProvider: s.GetBilling(),
		Cache:           s.GetCache(),
	})
}

func (s *OwnerServiceSuite) TestCreateOwner() {
	resp, err := s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("ada@example.com", resp.Email)
	s.False(resp.HasBillingCustomer())
	s.Zero(resp.Tickets)
}

func (s *OwnerServiceSuite) TestCreateOwnerDuplicateEmail() {
	_, err := s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	s.NoError(err)

	_, err = s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada Again",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *OwnerServiceSuite) TestCreateOwnerInvalidEmail() {
	_, err := s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "not-an-email",
		Name:  "Ada",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *OwnerServiceSuite) TestSetDefaultCardCreatesBillingIdentity() {
	created, err := s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	s.NoError(err)

	resp, err := s.service.SetDefaultCard(s.GetContext(), created.ID, &dto.SetDefaultCardRequest{
		Source: "tok_visa",
	})
	s.NoError(err)
	s.NotEmpty(resp.Customer.ID)

	got, err := s.service.GetOwner(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(resp.Customer.ID, got.BillingCustomerID)
	s.Equal(1, s.GetBilling().CallCount("CreateCustomer"))
	s.Zero(s.GetBilling().CallCount("CreateCustomerSource"))
}

func (s *OwnerServiceSuite) TestSetDefaultCardReplacesCard() {
	created, err := s.service.CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	s.NoError(err)

	_, err = s.service.SetDefaultCard(s.GetContext(), created.ID, &dto.SetDefaultCardRequest{
		Source: "tok_visa",
	})
	s.NoError(err)

	resp, err := s.service.SetDefaultCard(s.GetContext(), created.ID, &dto.SetDefaultCardRequest{
		Source: "tok_mastercard",
	})
	s.NoError(err)
	s.NotEmpty(resp.Customer.DefaultSourceID)
	s.Equal(1, s.GetBilling().CallCount("CreateCustomer"))
	s.Equal(1, s.GetBilling().CallCount("CreateCustomerSource"))
	s.Equal(1, s.GetBilling().CallCount("UpdateCustomerDefaultSource"))
}

func (s *OwnerServiceSuite) TestGetOwnerNotFound() {
	_, err := s.service.GetOwner(s.GetContext(), "owner_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
