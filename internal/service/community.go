package service

import (
	"context"

	"github.com/gatherly/gatherly/internal/api/dto"
	"github.com/gatherly/gatherly/internal/types"
)

// CommunityService manages community records. Activation state is owned by
// the membership service; these operations never touch billing.
type CommunityService interface {
	UpsertCommunity(ctx context.Context, ownerID string, req *dto.UpsertCommunityRequest) (*dto.CommunityResponse, error)
	GetCommunity(ctx context.Context, id string) (*dto.CommunityResponse, error)
	ListCommunities(ctx context.Context, filter *types.CommunityFilter) (*dto.ListCommunitiesResponse, error)
	DeleteCommunity(ctx context.Context, id string) error
}

type communityService struct {
	ServiceParams
}

func NewCommunityService(params ServiceParams) CommunityService {
	return &communityService{ServiceParams: params}
}

// UpsertCommunity creates a community, or refreshes the existing one when the
// owner already has a community with the same name, category and address.
func (s *communityService) UpsertCommunity(ctx context.Context, ownerID string, req *dto.UpsertCommunityRequest) (*dto.CommunityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.OwnerRepo.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	filter := types.NewCommunityFilter()
	filter.OwnerID = ownerID
	filter.Name = req.Name
	filter.Category = req.Category
	filter.Address = req.Address

	existing, err := s.CommunityRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		c := existing[0]
		c.Name = req.Name
		c.Category = req.Category
		c.Address = req.Address
		if err := s.CommunityRepo.Update(ctx, c); err != nil {
			return nil, err
		}
		return &dto.CommunityResponse{Community: c, IsNew: false}, nil
	}

	c := req.ToCommunity(ownerID)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.CommunityRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("created community", "community_id", c.ID, "owner_id", ownerID)
	return &dto.CommunityResponse{Community: c, IsNew: true}, nil
}

func (s *communityService) GetCommunity(ctx context.Context, id string) (*dto.CommunityResponse, error) {
	c, err := s.CommunityRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CommunityResponse{Community: c}, nil
}

func (s *communityService) ListCommunities(ctx context.Context, filter *types.CommunityFilter) (*dto.ListCommunitiesResponse, error) {
	if filter == nil {
		filter = types.NewCommunityFilter()
	}

	communities, err := s.CommunityRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.CommunityRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CommunityResponse, len(communities))
	for i, c := range communities {
		items[i] = &dto.CommunityResponse{Community: c}
	}
	return &dto.ListCommunitiesResponse{Items: items, Total: total}, nil
}

func (s *communityService) DeleteCommunity(ctx context.Context, id string) error {
	return s.CommunityRepo.Delete(ctx, id)
}
