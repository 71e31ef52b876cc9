package testutil

import (
	"context"

	"github.com/gatherly/gatherly/internal/domain/owner"
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/samber/lo"
)

// InMemoryOwnerStore implements owner.Repository
type InMemoryOwnerStore struct {
	*InMemoryStore[*owner.Owner]
}

// NewInMemoryOwnerStore creates a new in-memory owner store
func NewInMemoryOwnerStore() *InMemoryOwnerStore {
	return &InMemoryOwnerStore{
		InMemoryStore: NewInMemoryStore[*owner.Owner](),
	}
}

func copyOwner(o *owner.Owner) *owner.Owner {
	if o == nil {
		return nil
	}

	out := &owner.Owner{
		ID:                o.ID,
		Email:             o.Email,
		Name:              o.Name,
		BillingCustomerID: o.BillingCustomerID,
		Tickets:           o.Tickets,
		BaseModel: types.BaseModel{
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		},
	}
	if o.TicketExpiry != nil {
		expiry := *o.TicketExpiry
		out.TicketExpiry = &expiry
	}
	return out
}

func ownerFilterFn(_ context.Context, o *owner.Owner, filter interface{}) bool {
	f, ok := filter.(*types.OwnerFilter)
	if !ok || f == nil {
		return true
	}
	if o.Status != f.GetStatus() {
		return false
	}
	if f.Email != "" && o.Email != f.Email {
		return false
	}
	return true
}

func ownerSortFn(i, j *owner.Owner) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryOwnerStore) Create(ctx context.Context, o *owner.Owner) error {
	return s.InMemoryStore.Create(ctx, o.ID, copyOwner(o))
}

func (s *InMemoryOwnerStore) Get(ctx context.Context, id string) (*owner.Owner, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyOwner(o), nil
}

func (s *InMemoryOwnerStore) GetByEmail(ctx context.Context, email string) (*owner.Owner, error) {
	filter := types.NewOwnerFilter()
	filter.Email = email

	owners, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, ierr.NewError("owner not found").
			WithHintf("Owner with email %s was not found", email).
			Mark(ierr.ErrNotFound)
	}
	return owners[0], nil
}

func (s *InMemoryOwnerStore) List(ctx context.Context, filter *types.OwnerFilter) ([]*owner.Owner, error) {
	items, err := s.InMemoryStore.List(ctx, filter, ownerFilterFn, ownerSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(o *owner.Owner, _ int) *owner.Owner {
		return copyOwner(o)
	}), nil
}

func (s *InMemoryOwnerStore) Update(ctx context.Context, o *owner.Owner) error {
	return s.InMemoryStore.Update(ctx, o.ID, copyOwner(o))
}

func (s *InMemoryOwnerStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
