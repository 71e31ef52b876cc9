package dto

import (
	"github.com/gatherly/gatherly/internal/domain/community"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/gatherly/gatherly/internal/validator"
)

// UpsertCommunityRequest creates a community, or updates the matching one if
// the owner already has a community with the same name, category and address
type UpsertCommunityRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

func (r *UpsertCommunityRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpsertCommunityRequest) ToCommunity(ownerID string) *community.Community {
	return &community.Community{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMUNITY),
		OwnerID:   ownerID,
		Name:      r.Name,
		Category:  r.Category,
		Address:   r.Address,
		BaseModel: types.GetDefaultBaseModel(),
	}
}

// CommunityResponse is the API representation of a community. IsNew reports
// whether the upsert created a new record or matched an existing one.
type CommunityResponse struct {
	*community.Community
	IsNew bool `json:"is_new"`
}

// ListCommunitiesResponse is a paginated list of communities
type ListCommunitiesResponse struct {
	Items []*CommunityResponse `json:"items"`
	Total int                  `json:"total"`
}
