package community

import (
	ierr "github.com/gatherly/gatherly/internal/errors"
	"github.com/gatherly/gatherly/internal/types"
)

// Community represents a community owned by an owner. A community is created
// inactive; each activated community is one billable unit on the owner's
// consolidated subscription.
type Community struct {
	// ID is the unique identifier for the community
	ID string `db:"id" json:"id"`

	// OwnerID references the owning account
	OwnerID string `db:"owner_id" json:"owner_id"`

	// Name is the community name
	Name string `db:"name" json:"name"`

	// Category classifies the community
	Category string `db:"category" json:"category"`

	// Address is the community's physical address
	Address string `db:"address" json:"address"`

	// Activated marks the community as live and billable
	Activated bool `db:"activated" json:"activated"`

	types.BaseModel
}

// Validate checks the required identity fields. Name, category and address
// together identify a community for duplicate detection.
func (c *Community) Validate() error {
	if c.OwnerID == "" {
		return ierr.NewError("owner id is required").
			WithHint("A community must belong to an owner").
			Mark(ierr.ErrValidation)
	}
	if c.Name == "" || c.Category == "" || c.Address == "" {
		return ierr.NewError("missing community identity fields").
			WithHint("Community name, category, and address cannot be empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}
