package dto

import (
	"github.com/gatherly/gatherly/internal/domain/billing"
	"github.com/gatherly/gatherly/internal/domain/owner"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/gatherly/gatherly/internal/validator"
)

// CreateOwnerRequest creates a new owner account
type CreateOwnerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func (r *CreateOwnerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateOwnerRequest) ToOwner() *owner.Owner {
	return &owner.Owner{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OWNER),
		Email:     r.Email,
		Name:      r.Name,
		BaseModel: types.GetDefaultBaseModel(),
	}
}

// OwnerResponse is the API representation of an owner
type OwnerResponse struct {
	*owner.Owner
}

// SetDefaultCardRequest attaches a payment source and makes it the default
type SetDefaultCardRequest struct {
	Source string `json:"source" validate:"required"`
}

func (r *SetDefaultCardRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SetDefaultCardResponse reports the resulting billing customer state
type SetDefaultCardResponse struct {
	Customer *billing.Customer `json:"customer"`
}
