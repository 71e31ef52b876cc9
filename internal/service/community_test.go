package service

import (
	"testing"

	"github.com/gatherly/gatherly/internal/api/dto"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/testutil"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type CommunityServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CommunityService
	ownerID string
}

func TestCommunityService(t *testing.T) {
	suite.Run(t, new(CommunityServiceSuite))
}

func (s *CommunityServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		OwnerRepo:       s.GetStores().OwnerRepo,
		CommunityRepo:   s.GetStores().CommunityRepo,
		BillingProvider: s.GetBilling(),
		Cache:           s.GetCache(),
	}
	s.service = NewCommunityService(params)

	created, err := NewOwnerService(params).CreateOwner(s.GetContext(), &dto.CreateOwnerRequest{
		Email: "ada@example.com",
		Name:  "Ada",
	})
	s.Require().NoError(err)
	s.ownerID = created.ID
}

func (s *CommunityServiceSuite) TestUpsertCreatesNewCommunity() {
	resp, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
		Name:     "Chess Club",
		Category: "games",
		Address:  "12 Main St",
	})
	s.NoError(err)
	s.True(resp.IsNew)
	s.NotEmpty(resp.ID)
	s.False(resp.Activated, "communities are created inactive")
}

func (s *CommunityServiceSuite) TestUpsertMatchesExistingCommunity() {
	first, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
		Name:     "Chess Club",
		Category: "games",
		Address:  "12 Main St",
	})
	s.NoError(err)

	second, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
		Name:     "Chess Club",
		Category: "games",
		Address:  "12 Main St",
	})
	s.NoError(err)
	s.False(second.IsNew)
	s.Equal(first.ID, second.ID)
}

func (s *CommunityServiceSuite) TestUpsertValidation() {
	_, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
		Name: "Chess Club",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CommunityServiceSuite) TestUpsertOwnerNotFound() {
	_, err := s.service.UpsertCommunity(s.GetContext(), "owner_missing", &dto.UpsertCommunityRequest{
		Name:     "Chess Club",
		Category: "games",
		Address:  "12 Main St",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CommunityServiceSuite) TestListFiltersByActivated() {
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
			Name:     name,
			Category: "games",
			Address:  "12 Main St",
		})
		s.Require().NoError(err)
	}

	filter := types.NewCommunityFilter()
	filter.OwnerID = s.ownerID
	filter.Activated = lo.ToPtr(false)

	resp, err := s.service.ListCommunities(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 3)
	s.Equal(3, resp.Total)

	filter.Activated = lo.ToPtr(true)
	resp, err = s.service.ListCommunities(s.GetContext(), filter)
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *CommunityServiceSuite) TestDeleteCommunity() {
	created, err := s.service.UpsertCommunity(s.GetContext(), s.ownerID, &dto.UpsertCommunityRequest{
		Name:     "Chess Club",
		Category: "games",
		Address:  "12 Main St",
	})
	s.NoError(err)

	s.NoError(s.service.DeleteCommunity(s.GetContext(), created.ID))

	_, err = s.service.GetCommunity(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
