package dto

import (
	"github.com/gatherly/gatherly/internal/domain/billing"
	"github.com/gatherly/gatherly/internal/types"
	"github.com/gatherly/gatherly/internal/validator"
)

// ActivateCommunityRequest turns a community on for billing. Source is a
// payment source token, required only when the owner has no billing identity
// yet.
type ActivateCommunityRequest struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	CommunityID string `json:"community_id" validate:"required"`
	Source      string `json:"source,omitempty"`
}

func (r *ActivateCommunityRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// DeactivateCommunityRequest turns a community off for billing
type DeactivateCommunityRequest struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	CommunityID string `json:"community_id" validate:"required"`
}

func (r *DeactivateCommunityRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ActivateCommunityResponse reports the external billing state after an
// activation run, plus the ordered step trace of the run.
type ActivateCommunityResponse struct {
	Customer        *billing.Customer     `json:"customer,omitempty"`
	Subscription    *billing.Subscription `json:"subscription,omitempty"`
	LastInvoice     *billing.Invoice      `json:"last_invoice,omitempty"`
	UpcomingInvoice *billing.Invoice      `json:"upcoming_invoice,omitempty"`
	Steps           types.StepTrace       `json:"steps"`
}

// DeactivateCommunityResponse reports the external billing state after a
// deactivation run.
type DeactivateCommunityResponse struct {
	Subscription    *billing.Subscription `json:"subscription,omitempty"`
	UpcomingInvoice *billing.Invoice      `json:"upcoming_invoice,omitempty"`
	Steps           types.StepTrace       `json:"steps"`
}
