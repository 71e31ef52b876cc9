package community

import (
	"context"

	"github.com/gatherly/gatherly/internal/types"
)

// Repository defines the interface for community data access
type Repository interface {
	Create(ctx context.Context, community *Community) error
	Get(ctx context.Context, id string) (*Community, error)
	List(ctx context.Context, filter *types.CommunityFilter) ([]*Community, error)
	Count(ctx context.Context, filter *types.CommunityFilter) (int, error)
	Update(ctx context.Context, community *Community) error
	Delete(ctx context.Context, id string) error
}
