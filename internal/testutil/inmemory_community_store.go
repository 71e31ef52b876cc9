package testutil

import (
	"context"

	"github.com/gatherly/gatherly/internal/domain/community"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/samber/lo"
)

// InMemoryCommunityStore implements community.Repository
type InMemoryCommunityStore struct {
	*InMemoryStore[*community.Community]
}

// NewInMemoryCommunityStore creates a new in-memory community store
func NewInMemoryCommunityStore() *InMemoryCommunityStore {
	return &InMemoryCommunityStore{
		InMemoryStore: NewInMemoryStore[*community.Community](),
	}
}

func copyCommunity(c *community.Community) *community.Community {
	if c == nil {
		return nil
	}
	return &community.Community{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Category:  c.Category,
		Address:   c.Address,
		Activated: c.Activated,
		BaseModel: types.BaseModel{
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
	}
}

func communityFilterFn(_ context.Context, c *community.Community, filter interface{}) bool {
	f, ok := filter.(*types.CommunityFilter)
	if !ok || f == nil {
		return true
	}
	if c.Status != f.GetStatus() {
		return false
	}
	if f.OwnerID != "" && c.OwnerID != f.OwnerID {
		return false
	}
	if f.Activated != nil && c.Activated != *f.Activated {
		return false
	}
	if f.Name != "" && c.Name != f.Name {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Address != "" && c.Address != f.Address {
		return false
	}
	return true
}

func communitySortFn(i, j *community.Community) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryCommunityStore) Create(ctx context.Context, c *community.Community) error {
	return s.InMemoryStore.Create(ctx, c.ID, copyCommunity(c))
}

func (s *InMemoryCommunityStore) Get(ctx context.Context, id string) (*community.Community, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyCommunity(c), nil
}

func (s *InMemoryCommunityStore) List(ctx context.Context, filter *types.CommunityFilter) ([]*community.Community, error) {
	items, err := s.InMemoryStore.List(ctx, filter, communityFilterFn, communitySortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *community.Community, _ int) *community.Community {
		return copyCommunity(c)
	}), nil
}

func (s *InMemoryCommunityStore) Count(ctx context.Context, filter *types.CommunityFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, communityFilterFn)
}

func (s *InMemoryCommunityStore) Update(ctx context.Context, c *community.Community) error {
	return s.InMemoryStore.Update(ctx, c.ID, copyCommunity(c))
}

func (s *InMemoryCommunityStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
