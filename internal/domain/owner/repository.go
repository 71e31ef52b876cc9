package owner

import (
	"context"

	"github.com/gatherly/gatherly/internal/types"
)

// Repository defines the interface for owner data access
type Repository interface {
	Create(ctx context.Context, owner *Owner) error
	Get(ctx context.Context, id string) (*Owner, error)
	GetByEmail(ctx context.Context, email string) (*Owner, error)
	List(ctx context.Context, filter *types.OwnerFilter) ([]*Owner, error)
	Update(ctx context.Context, owner *Owner) error
	Delete(ctx context.Context, id string) error
}
